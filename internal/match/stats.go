package match

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// PerformanceTypes flags which disciplines a player touched in a match.
type PerformanceTypes struct {
	Batting  bool `json:"batting"`
	Bowling  bool `json:"bowling"`
	Fielding bool `json:"fielding"`
}

func (p PerformanceTypes) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *PerformanceTypes) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("PerformanceTypes: expected []byte, got %T", src)
	}
	return json.Unmarshal(b, p)
}

// BattingStats holds a player's batting figures for one match. The strike
// rate is never stored; it is derived on read.
type BattingStats struct {
	RunsScored    int            `json:"runs_scored"`
	BallsFaced    int            `json:"balls_faced"`
	Fours         int            `json:"fours"`
	Sixes         int            `json:"sixes"`
	IsOut         bool           `json:"is_out"`
	DismissalType *DismissalType `json:"dismissal_type,omitempty"`
	DismissedByID *uint          `json:"dismissed_by_id,omitempty"`
	CaughtByID    *uint          `json:"caught_by_id,omitempty"`
}

func (s BattingStats) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *BattingStats) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("BattingStats: expected []byte, got %T", src)
	}
	return json.Unmarshal(b, s)
}

// StrikeRate is runs per hundred balls, zero before the first ball faced.
func (s *BattingStats) StrikeRate() float64 {
	if s.BallsFaced == 0 {
		return 0
	}
	return float64(s.RunsScored) / float64(s.BallsFaced) * 100
}

// BowlingStats holds a player's bowling figures for one match. The economy
// rate is never stored; it is derived on read.
type BowlingStats struct {
	BallsBowled  int `json:"balls_bowled"`
	RunsConceded int `json:"runs_conceded"`
	WicketsTaken int `json:"wickets_taken"`
	Maidens      int `json:"maidens"`
	NoBalls      int `json:"no_balls"`
	Wides        int `json:"wides"`
}

func (s BowlingStats) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *BowlingStats) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("BowlingStats: expected []byte, got %T", src)
	}
	return json.Unmarshal(b, s)
}

// EconomyRate is runs conceded per over of legal deliveries, zero before
// the first legal ball.
func (s *BowlingStats) EconomyRate() float64 {
	if s.BallsBowled == 0 {
		return 0
	}
	return float64(s.RunsConceded) / (float64(s.BallsBowled) / float64(ballsPerOver))
}

// OversDisplay renders balls bowled as overs.balls.
func (s *BowlingStats) OversDisplay() string {
	return fmt.Sprintf("%d.%d", s.BallsBowled/ballsPerOver, s.BallsBowled%ballsPerOver)
}

// FieldingStats holds a player's fielding credits for one match.
type FieldingStats struct {
	Catches   int `json:"catches"`
	RunOuts   int `json:"run_outs"`
	Stumpings int `json:"stumpings"`
}

func (s FieldingStats) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *FieldingStats) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("FieldingStats: expected []byte, got %T", src)
	}
	return json.Unmarshal(b, s)
}

// PlayerMatchStat is one player's aggregated figures for one match, upserted
// in the same transaction as each accepted ball.
type PlayerMatchStat struct {
	gorm.Model
	MatchID          uint             `gorm:"uniqueIndex:idx_match_player;not null" json:"match_id"`
	PlayerID         uint             `gorm:"uniqueIndex:idx_match_player;not null" json:"player_id"`
	TeamID           uint             `gorm:"index" json:"team_id"`
	PerformanceTypes PerformanceTypes `gorm:"type:jsonb" json:"performance_types"`
	Batting          BattingStats     `gorm:"type:jsonb" json:"batting"`
	Bowling          BowlingStats     `gorm:"type:jsonb" json:"bowling"`
	Fielding         FieldingStats    `gorm:"type:jsonb" json:"fielding"`
}

// StatView is the read shape for a stat row with the derived rates attached.
type StatView struct {
	PlayerMatchStat
	StrikeRate  float64 `json:"strike_rate"`
	EconomyRate float64 `json:"economy_rate"`
	OversBowled string  `json:"overs_bowled"`
}

// View computes the derived figures for a response.
func (s *PlayerMatchStat) View() StatView {
	return StatView{
		PlayerMatchStat: *s,
		StrikeRate:      s.Batting.StrikeRate(),
		EconomyRate:     s.Bowling.EconomyRate(),
		OversBowled:     s.Bowling.OversDisplay(),
	}
}

// ApplyBallToBatting folds a delivery into the striker's figures. Wides are
// not a ball faced.
func ApplyBallToBatting(stat *PlayerMatchStat, b *BallEvent) {
	stat.PerformanceTypes.Batting = true
	wide := b.ExtraType != nil && *b.ExtraType == ExtraWide
	if !wide {
		stat.Batting.BallsFaced++
	}

	// Byes and leg byes are not credited to the batsman.
	offBat := b.ExtraType == nil || *b.ExtraType == ExtraNoBall
	if offBat {
		stat.Batting.RunsScored += b.Runs
		switch b.Runs {
		case 4:
			stat.Batting.Fours++
		case 6:
			stat.Batting.Sixes++
		}
	}

	if b.IsWicket && b.PlayerOutID != nil && *b.PlayerOutID == stat.PlayerID {
		markDismissed(stat, b)
	}
}

func markDismissed(stat *PlayerMatchStat, b *BallEvent) {
	stat.Batting.IsOut = true
	stat.Batting.DismissalType = b.DismissalType
	if b.DismissalType != nil && b.DismissalType.BowlerCredited() {
		bowlerID := b.BowlerID
		stat.Batting.DismissedByID = &bowlerID
	}
	if b.DismissalType != nil && *b.DismissalType == DismissalCaught && len(b.FielderIDs) > 0 {
		catcher := b.FielderIDs[0]
		stat.Batting.CaughtByID = &catcher
	}
}

// ApplyBallToBowling folds a delivery into the bowler's figures. Only
// wides and no-balls are charged to the bowler among the extras, and only
// legal deliveries advance the ball count.
func ApplyBallToBowling(stat *PlayerMatchStat, b *BallEvent) {
	stat.PerformanceTypes.Bowling = true

	conceded := 0
	legal := true
	if b.ExtraType != nil {
		switch *b.ExtraType {
		case ExtraWide:
			stat.Bowling.Wides++
			conceded += b.Runs + b.ExtraRuns
			legal = false
		case ExtraNoBall:
			stat.Bowling.NoBalls++
			conceded += b.Runs + b.ExtraRuns
			legal = false
		case ExtraBye, ExtraLegBye:
			// Not charged to the bowler.
		}
	} else {
		conceded += b.Runs
	}

	stat.Bowling.RunsConceded += conceded
	if legal {
		stat.Bowling.BallsBowled++
	}
	if b.IsWicket && b.DismissalType != nil && b.DismissalType.BowlerCredited() {
		stat.Bowling.WicketsTaken++
	}
}

// ApplyBallToFielding credits a fielder involved in a dismissal.
func ApplyBallToFielding(stat *PlayerMatchStat, b *BallEvent) {
	if !b.IsWicket || b.DismissalType == nil {
		return
	}
	stat.PerformanceTypes.Fielding = true
	switch *b.DismissalType {
	case DismissalCaught:
		stat.Fielding.Catches++
	case DismissalRunOut:
		stat.Fielding.RunOuts++
	case DismissalStumped:
		stat.Fielding.Stumpings++
	}
}

// ApplyBallToDismissed marks a run-out (or similar) victim who was not the
// striker.
func ApplyBallToDismissed(stat *PlayerMatchStat, b *BallEvent) {
	if !b.IsWicket || b.PlayerOutID == nil || *b.PlayerOutID != stat.PlayerID {
		return
	}
	stat.PerformanceTypes.Batting = true
	markDismissed(stat, b)
}
