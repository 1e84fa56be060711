package match

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pitchside/uct-api/pkg/apperrors"
)

type MatchStatus string

const (
	StatusUpcoming  MatchStatus = "upcoming"
	StatusOngoing   MatchStatus = "ongoing"
	StatusFinished  MatchStatus = "finished"
	StatusCancelled MatchStatus = "cancelled"
	StatusPostponed MatchStatus = "postponed"
)

type InningsStatus string

const (
	InningsNotStarted InningsStatus = "not_started"
	InningsInProgress InningsStatus = "in_progress"
	InningsCompleted  InningsStatus = "completed"
)

// DismissalType is the closed vocabulary for wickets.
type DismissalType string

const (
	DismissalBowled      DismissalType = "bowled"
	DismissalCaught      DismissalType = "caught"
	DismissalLBW         DismissalType = "lbw"
	DismissalRunOut      DismissalType = "run_out"
	DismissalStumped     DismissalType = "stumped"
	DismissalHitWicket   DismissalType = "hit_wicket"
	DismissalObstructing DismissalType = "obstructing_the_field"
	DismissalTimedOut    DismissalType = "timed_out"
	DismissalRetired     DismissalType = "retired"
)

func ValidDismissal(d DismissalType) bool {
	switch d {
	case DismissalBowled, DismissalCaught, DismissalLBW, DismissalRunOut,
		DismissalStumped, DismissalHitWicket, DismissalObstructing,
		DismissalTimedOut, DismissalRetired:
		return true
	}
	return false
}

// BowlerCredited reports whether the dismissal counts as the bowler's
// wicket.
func (d DismissalType) BowlerCredited() bool {
	switch d {
	case DismissalBowled, DismissalCaught, DismissalLBW, DismissalStumped, DismissalHitWicket:
		return true
	}
	return false
}

// ExtraType for runs not scored off the bat.
type ExtraType string

const (
	ExtraWide   ExtraType = "wide"
	ExtraNoBall ExtraType = "no_ball"
	ExtraBye    ExtraType = "bye"
	ExtraLegBye ExtraType = "leg_bye"
)

func ValidExtra(e ExtraType) bool {
	switch e {
	case ExtraWide, ExtraNoBall, ExtraBye, ExtraLegBye:
		return true
	}
	return false
}

// Toss decisions.
const (
	TossBat  = "bat"
	TossBowl = "bowl"
)

const ballsPerOver = 6
const wicketsPerInnings = 10

// Format is the playing format of a match, stored as JSONB.
type Format struct {
	TotalOvers     int `json:"total_overs"`
	InningsPerTeam int `json:"innings_per_team"`
}

func (f Format) Value() (driver.Value, error) {
	return json.Marshal(f)
}

func (f *Format) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("Format: expected []byte, got %T", src)
	}
	return json.Unmarshal(b, f)
}

// MatchState carries live break flags and a free-form message, stored as
// JSONB.
type MatchState struct {
	IsTimeout    bool   `json:"is_timeout"`
	IsDrinkBreak bool   `json:"is_drink_break"`
	IsLunchBreak bool   `json:"is_lunch_break"`
	IsPowerPlay  bool   `json:"is_power_play"`
	Message      string `json:"message,omitempty"`
}

func (s MatchState) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *MatchState) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("MatchState: expected []byte, got %T", src)
	}
	return json.Unmarshal(b, s)
}

// Extras is the per-innings extras breakdown.
type Extras struct {
	Wides     int `json:"wides"`
	NoBalls   int `json:"no_balls"`
	Byes      int `json:"byes"`
	LegByes   int `json:"leg_byes"`
	Penalties int `json:"penalties"`
}

func (e Extras) Total() int {
	return e.Wides + e.NoBalls + e.Byes + e.LegByes + e.Penalties
}

// Innings is one batting session, embedded in the match row so the whole
// scoring state updates as a single row write.
type Innings struct {
	Number         int           `json:"number"`
	BattingTeamID  uint          `json:"batting_team_id"`
	BowlingTeamID  uint          `json:"bowling_team_id"`
	Runs           int           `json:"runs"`
	Wickets        int           `json:"wickets"`
	Overs          int           `json:"overs"`
	BallsInOver    int           `json:"balls_in_over"`
	Extras         Extras        `json:"extras"`
	CurrentBatsmen []uint        `json:"current_batsmen,omitempty"`
	CurrentBowler  uint          `json:"current_bowler,omitempty"`
	Status         InningsStatus `json:"status"`
}

// OversDisplay renders the innings progress as overs.balls, e.g. "12.4".
func (i *Innings) OversDisplay() string {
	return fmt.Sprintf("%d.%d", i.Overs, i.BallsInOver)
}

type InningsList []Innings

func (l InningsList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *InningsList) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("InningsList: expected []byte, got %T", src)
	}
	return json.Unmarshal(b, l)
}

type UintList []uint

func (l UintList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *UintList) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("UintList: expected []byte, got %T", src)
	}
	return json.Unmarshal(b, l)
}

// Match is a fixture between two teams. The innings array and live state
// are embedded JSONB so a scoring update touches exactly one row, guarded
// by the Version column.
type Match struct {
	gorm.Model
	Title                 string      `gorm:"size:256;not null" json:"title"`
	Team1ID               uint        `gorm:"index;not null" json:"team1_id"`
	Team2ID               uint        `gorm:"index;not null" json:"team2_id"`
	Date                  time.Time   `json:"date"`
	Location              string      `gorm:"size:256" json:"location,omitempty"`
	Format                Format      `gorm:"type:jsonb" json:"format"`
	TossWonBy             *uint       `json:"toss_won_by,omitempty"`
	TossDecision          string      `gorm:"size:8" json:"toss_decision,omitempty"`
	CurrentInningsNumber  int         `gorm:"default:0" json:"current_innings_number"`
	Innings               InningsList `gorm:"type:jsonb;default:'[]'" json:"innings"`
	WinnerTeamID          *uint       `json:"winner_team_id,omitempty"`
	ManOfTheMatchID       *uint       `json:"man_of_the_match_id,omitempty"`
	Status                MatchStatus `gorm:"size:16;index;default:'upcoming'" json:"status"`
	State                 MatchState  `gorm:"type:jsonb" json:"state"`
	Team1PlayingXI        UintList    `gorm:"type:jsonb;default:'[]'" json:"team1_playing_xi"`
	Team2PlayingXI        UintList    `gorm:"type:jsonb;default:'[]'" json:"team2_playing_xi"`
	Version               int         `gorm:"default:0" json:"-"`
}

// CurrentInnings returns the innings being played, or nil.
func (m *Match) CurrentInnings() *Innings {
	for i := range m.Innings {
		if m.Innings[i].Number == m.CurrentInningsNumber {
			return &m.Innings[i]
		}
	}
	return nil
}

// InningsByNumber returns an innings by its 1-based number, or nil.
func (m *Match) InningsByNumber(n int) *Innings {
	for i := range m.Innings {
		if m.Innings[i].Number == n {
			return &m.Innings[i]
		}
	}
	return nil
}

func (m *Match) totalInnings() int {
	per := m.Format.InningsPerTeam
	if per < 1 {
		per = 1
	}
	return per * 2
}

// RecordToss stores the toss result. Only valid before the match starts
// and the winner must be one of the two teams.
func (m *Match) RecordToss(winnerTeamID uint, decision string) error {
	if m.Status != StatusUpcoming {
		return apperrors.Validation("toss can only be recorded before the match starts")
	}
	if winnerTeamID != m.Team1ID && winnerTeamID != m.Team2ID {
		return apperrors.Validation("toss winner must be one of the playing teams")
	}
	if decision != TossBat && decision != TossBowl {
		return apperrors.Validation("toss decision must be bat or bowl")
	}
	m.TossWonBy = &winnerTeamID
	m.TossDecision = decision
	return nil
}

// Start opens the first innings according to the toss.
func (m *Match) Start() error {
	if m.Status != StatusUpcoming {
		return apperrors.Validation("match is not in an upcoming state")
	}
	if m.TossWonBy == nil {
		return apperrors.Validation("record the toss before starting the match")
	}

	batting, bowling := m.Team1ID, m.Team2ID
	if (*m.TossWonBy == m.Team1ID && m.TossDecision == TossBowl) ||
		(*m.TossWonBy == m.Team2ID && m.TossDecision == TossBat) {
		batting, bowling = m.Team2ID, m.Team1ID
	}

	m.Status = StatusOngoing
	m.CurrentInningsNumber = 1
	m.Innings = InningsList{{
		Number:        1,
		BattingTeamID: batting,
		BowlingTeamID: bowling,
		Status:        InningsInProgress,
	}}
	return nil
}

// ApplyBall folds one delivery into the live innings. The caller persists
// the mutated match together with the ball event in one transaction.
func (m *Match) ApplyBall(b *BallEvent) error {
	if m.Status != StatusOngoing {
		return apperrors.Validation("match is not in progress")
	}
	inn := m.CurrentInnings()
	if inn == nil {
		return apperrors.NotFound("no innings in progress")
	}
	if inn.Status != InningsInProgress {
		return apperrors.Validation("current innings is not in progress")
	}
	if b.BallNumber < 1 || b.BallNumber > ballsPerOver {
		return apperrors.Validation("ball number must be between 1 and 6")
	}
	if b.Runs < 0 {
		return apperrors.Validation("runs cannot be negative")
	}
	if b.ExtraType != nil && !ValidExtra(*b.ExtraType) {
		return apperrors.Validation("invalid extra type")
	}
	if b.IsWicket {
		if b.DismissalType == nil || !ValidDismissal(*b.DismissalType) {
			return apperrors.Validation("a wicket needs a valid dismissal type")
		}
	}

	b.MatchID = m.ID
	b.BattingTeamID = inn.BattingTeamID
	b.BowlingTeamID = inn.BowlingTeamID
	if b.Timestamp.IsZero() {
		b.Timestamp = time.Now()
	}

	// All runs recorded on the ball count to the innings total.
	inn.Runs += b.Runs

	legal := true
	if b.ExtraType != nil {
		switch *b.ExtraType {
		case ExtraWide:
			// One automatic run, and the ball is re-bowled.
			inn.Extras.Wides++
			inn.Runs++
			b.ExtraRuns = 1
			legal = false
		case ExtraNoBall:
			inn.Extras.NoBalls++
			inn.Runs++
			b.ExtraRuns = 1
			legal = false
		case ExtraBye:
			inn.Extras.Byes += b.Runs
		case ExtraLegBye:
			inn.Extras.LegByes += b.Runs
		}
	}

	if b.IsWicket {
		inn.Wickets++
	}

	if legal {
		inn.BallsInOver++
		if inn.BallsInOver == ballsPerOver {
			inn.Overs++
			inn.BallsInOver = 0
		}
	}

	b.Outcome = DeriveOutcome(b)

	if inn.Wickets >= wicketsPerInnings || inn.Overs >= m.Format.TotalOvers {
		m.closeInnings(inn)
	}
	return nil
}

// closeInnings completes the current innings and either opens the next one
// or finishes the match.
func (m *Match) closeInnings(inn *Innings) {
	inn.Status = InningsCompleted
	if len(m.Innings) >= m.totalInnings() {
		m.finishFromScores()
		return
	}
	next := Innings{
		Number:        inn.Number + 1,
		BattingTeamID: inn.BowlingTeamID,
		BowlingTeamID: inn.BattingTeamID,
		Status:        InningsInProgress,
	}
	m.Innings = append(m.Innings, next)
	m.CurrentInningsNumber = next.Number
}

// EndInnings closes the current innings by declaration.
func (m *Match) EndInnings() error {
	if m.Status != StatusOngoing {
		return apperrors.Validation("match is not in progress")
	}
	inn := m.CurrentInnings()
	if inn == nil || inn.Status != InningsInProgress {
		return apperrors.Validation("no innings in progress")
	}
	m.closeInnings(inn)
	return nil
}

// finishFromScores settles the winner by comparing team totals across all
// innings. A tie leaves WinnerTeamID nil.
func (m *Match) finishFromScores() {
	m.Status = StatusFinished
	team1, team2 := 0, 0
	for i := range m.Innings {
		if m.Innings[i].BattingTeamID == m.Team1ID {
			team1 += m.Innings[i].Runs
		} else {
			team2 += m.Innings[i].Runs
		}
	}
	switch {
	case team1 > team2:
		m.WinnerTeamID = &m.Team1ID
	case team2 > team1:
		m.WinnerTeamID = &m.Team2ID
	}
}

// Finish ends the match explicitly with a winner and optional award.
func (m *Match) Finish(winnerTeamID *uint, manOfTheMatchID *uint) error {
	if m.Status != StatusOngoing {
		return apperrors.Validation("match is not in progress")
	}
	if winnerTeamID != nil && *winnerTeamID != m.Team1ID && *winnerTeamID != m.Team2ID {
		return apperrors.Validation("winner must be one of the playing teams")
	}
	for i := range m.Innings {
		if m.Innings[i].Status == InningsInProgress {
			m.Innings[i].Status = InningsCompleted
		}
	}
	m.Status = StatusFinished
	if winnerTeamID != nil {
		m.WinnerTeamID = winnerTeamID
	} else {
		m.finishFromScores()
	}
	m.ManOfTheMatchID = manOfTheMatchID
	return nil
}

// BallEvent is the immutable record of one delivery. The composite unique
// index makes replays of the same delivery a conflict instead of a double
// count.
type BallEvent struct {
	gorm.Model
	MatchID       uint           `gorm:"uniqueIndex:idx_match_over_ball;not null" json:"match_id"`
	OverNumber    int            `gorm:"uniqueIndex:idx_match_over_ball;not null" json:"over_number"`
	BallNumber    int            `gorm:"uniqueIndex:idx_match_over_ball;not null" json:"ball_number"`
	BatsmanID     uint           `gorm:"index;not null" json:"batsman_id"`
	BowlerID      uint           `gorm:"index;not null" json:"bowler_id"`
	BattingTeamID uint           `gorm:"index" json:"batting_team_id"`
	BowlingTeamID uint           `gorm:"index" json:"bowling_team_id"`
	Runs          int            `gorm:"default:0" json:"runs"`
	ExtraRuns     int            `gorm:"default:0" json:"extra_runs"`
	ExtraType     *ExtraType     `gorm:"size:16" json:"extra_type,omitempty"`
	IsWicket      bool           `gorm:"default:false" json:"is_wicket"`
	DismissalType *DismissalType `gorm:"size:32" json:"dismissal_type,omitempty"`
	PlayerOutID   *uint          `json:"player_out_id,omitempty"`
	FielderIDs    UintList       `gorm:"type:jsonb;default:'[]'" json:"fielder_ids,omitempty"`
	Outcome       string         `gorm:"size:16" json:"outcome"`
	Commentary    string         `gorm:"type:text" json:"commentary,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

// DeriveOutcome tags a ball for display. Wickets win over extras, extras
// over boundaries.
func DeriveOutcome(b *BallEvent) string {
	switch {
	case b.IsWicket:
		return "wicket"
	case b.ExtraType != nil:
		return string(*b.ExtraType)
	case b.Runs == 4:
		return "four"
	case b.Runs == 6:
		return "six"
	case b.Runs == 0:
		return "dot"
	case b.Runs == 1:
		return "single"
	case b.Runs == 2:
		return "double"
	case b.Runs == 3:
		return "triple"
	default:
		return "runs"
	}
}
