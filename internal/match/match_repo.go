package match

import (
	"errors"

	"gorm.io/gorm"

	"github.com/pitchside/uct-api/pkg/apperrors"
)

// MatchRepository defines methods to interact with match-related data.
type MatchRepository interface {
	CreateMatch(m *Match) error
	GetMatchByID(id uint) (*Match, error)
	UpdateMatch(m *Match) error
	GetMatches(status MatchStatus, teamID uint, page, pageSize int) ([]Match, int64, error)

	// SaveBall persists one delivery atomically: the ball event insert, the
	// versioned match update and the stat upserts either all land or none
	// do.
	SaveBall(m *Match, ball *BallEvent) error

	GetBalls(matchID uint) ([]BallEvent, error)
	GetStats(matchID uint) ([]PlayerMatchStat, error)
}

// GormMatchRepository implements MatchRepository using GORM.
type GormMatchRepository struct {
	db *gorm.DB
}

func NewGormMatchRepository(db *gorm.DB) *GormMatchRepository {
	return &GormMatchRepository{db: db}
}

func (r *GormMatchRepository) CreateMatch(m *Match) error {
	return r.db.Create(m).Error
}

func (r *GormMatchRepository) GetMatchByID(id uint) (*Match, error) {
	var m Match
	if err := r.db.First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMatch writes the match row guarded by the version column. A
// concurrent writer makes the guard miss, which surfaces as a conflict so
// the caller can reload and retry.
func (r *GormMatchRepository) UpdateMatch(m *Match) error {
	return r.casUpdate(r.db, m)
}

func (r *GormMatchRepository) casUpdate(tx *gorm.DB, m *Match) error {
	previous := m.Version
	m.Version++
	res := tx.Model(&Match{}).
		Where("id = ? AND version = ?", m.ID, previous).
		Select("*").
		Omit("id", "created_at").
		Updates(m)
	if res.Error != nil {
		m.Version = previous
		return res.Error
	}
	if res.RowsAffected == 0 {
		m.Version = previous
		return apperrors.Conflict("match was modified concurrently, retry")
	}
	return nil
}

func (r *GormMatchRepository) GetMatches(status MatchStatus, teamID uint, page, pageSize int) ([]Match, int64, error) {
	var matches []Match
	var total int64

	query := r.db.Model(&Match{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if teamID != 0 {
		query = query.Where("team1_id = ? OR team2_id = ?", teamID, teamID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	err := query.Order("date DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&matches).Error
	return matches, total, err
}

// ballWriter is the slice of a transaction that recording one delivery
// needs. saveBall is written against it so the write ordering can be
// exercised without a database.
type ballWriter interface {
	createBall(ball *BallEvent) error
	updateMatch(m *Match) error
	loadStat(matchID, playerID, teamID uint) (*PlayerMatchStat, error)
	saveStat(stat *PlayerMatchStat) error
}

type gormBallWriter struct {
	tx   *gorm.DB
	repo *GormMatchRepository
}

func (w *gormBallWriter) createBall(ball *BallEvent) error {
	return w.tx.Create(ball).Error
}

func (w *gormBallWriter) updateMatch(m *Match) error {
	return w.repo.casUpdate(w.tx, m)
}

func (w *gormBallWriter) loadStat(matchID, playerID, teamID uint) (*PlayerMatchStat, error) {
	var stat PlayerMatchStat
	err := w.tx.Where("match_id = ? AND player_id = ?", matchID, playerID).First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &PlayerMatchStat{MatchID: matchID, PlayerID: playerID, TeamID: teamID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &stat, nil
}

func (w *gormBallWriter) saveStat(stat *PlayerMatchStat) error {
	return w.tx.Save(stat).Error
}

// SaveBall runs the write side of ball recording inside one transaction.
func (r *GormMatchRepository) SaveBall(m *Match, ball *BallEvent) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return saveBall(&gormBallWriter{tx: tx, repo: r}, m, ball)
	})
}

// saveBall orders the writes: the ball insert goes first so a duplicate
// (match, over, ball) aborts before any score or stat is touched.
func saveBall(w ballWriter, m *Match, ball *BallEvent) error {
	if err := w.createBall(ball); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("this delivery has already been recorded")
		}
		return err
	}

	if err := w.updateMatch(m); err != nil {
		return err
	}

	return upsertStats(w, m, ball)
}

func upsertStats(w ballWriter, m *Match, ball *BallEvent) error {
	batsman, err := w.loadStat(m.ID, ball.BatsmanID, ball.BattingTeamID)
	if err != nil {
		return err
	}
	ApplyBallToBatting(batsman, ball)
	if err := w.saveStat(batsman); err != nil {
		return err
	}

	bowler, err := w.loadStat(m.ID, ball.BowlerID, ball.BowlingTeamID)
	if err != nil {
		return err
	}
	ApplyBallToBowling(bowler, ball)
	if err := w.saveStat(bowler); err != nil {
		return err
	}

	if ball.IsWicket {
		for _, fielderID := range ball.FielderIDs {
			fielder, err := w.loadStat(m.ID, fielderID, ball.BowlingTeamID)
			if err != nil {
				return err
			}
			ApplyBallToFielding(fielder, ball)
			if err := w.saveStat(fielder); err != nil {
				return err
			}
		}
		// A run-out victim may be the non-striker.
		if ball.PlayerOutID != nil && *ball.PlayerOutID != ball.BatsmanID {
			victim, err := w.loadStat(m.ID, *ball.PlayerOutID, ball.BattingTeamID)
			if err != nil {
				return err
			}
			ApplyBallToDismissed(victim, ball)
			if err := w.saveStat(victim); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *GormMatchRepository) GetBalls(matchID uint) ([]BallEvent, error) {
	var balls []BallEvent
	err := r.db.Where("match_id = ?", matchID).
		Order("over_number ASC, ball_number ASC, id ASC").
		Find(&balls).Error
	return balls, err
}

func (r *GormMatchRepository) GetStats(matchID uint) ([]PlayerMatchStat, error) {
	var stats []PlayerMatchStat
	err := r.db.Where("match_id = ?", matchID).Find(&stats).Error
	return stats, err
}
