package team

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pitchside/uct-api/pkg/apperrors"
)

// Expense is one entry in a team's spending ledger, stored as JSONB.
type Expense struct {
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
}

type ExpenseList []Expense

func (e ExpenseList) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// Scan unmarshals the JSONB column into the slice.
func (e *ExpenseList) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("ExpenseList: expected []byte, got %T", src)
	}
	return json.Unmarshal(b, e)
}

// Team is a university squad. Budget and the expense ledger live on the
// team row so a spend is a single-row update.
type Team struct {
	gorm.Model
	Name         string      `gorm:"uniqueIndex;size:256;not null" json:"name"`
	CaptainID    uint        `gorm:"index;not null" json:"captain_id"`
	UniversityID uint        `gorm:"index;not null" json:"university_id"`
	Points       int         `gorm:"default:0" json:"points"`
	Budget       float64     `gorm:"default:0;check:budget >= 0" json:"budget"`
	Expenses     ExpenseList `gorm:"type:jsonb;default:'[]'" json:"expenses"`
}

// AddExpense debits the budget and appends a ledger entry. A non-positive
// amount or one exceeding the current budget is rejected and the team is
// left untouched.
func (t *Team) AddExpense(description string, amount float64, date time.Time) error {
	if amount <= 0 {
		return apperrors.Validation("expense amount must be positive")
	}
	if amount > t.Budget {
		return apperrors.Validation("expense amount exceeds available budget")
	}
	t.Budget -= amount
	t.Expenses = append(t.Expenses, Expense{
		Description: description,
		Amount:      amount,
		Date:        date,
	})
	return nil
}

// AddFunds credits the budget.
func (t *Team) AddFunds(amount float64) error {
	if amount <= 0 {
		return apperrors.Validation("funds amount must be positive")
	}
	t.Budget += amount
	return nil
}

// TotalExpenses sums the ledger.
func (t *Team) TotalExpenses() float64 {
	var total float64
	for _, e := range t.Expenses {
		total += e.Amount
	}
	return total
}

// TeamPlayer links a player to a team roster with a playing role.
type TeamPlayer struct {
	gorm.Model
	TeamID   uint   `gorm:"uniqueIndex:idx_team_player;not null" json:"team_id"`
	PlayerID uint   `gorm:"uniqueIndex:idx_team_player;not null" json:"player_id"`
	Role     string `gorm:"size:32;default:'batsman'" json:"role"`
}

// Valid roster roles.
const (
	RoleBatsman      = "batsman"
	RoleBowler       = "bowler"
	RoleAllRounder   = "all-rounder"
	RoleWicketKeeper = "wicket-keeper"
	RoleCaptain      = "captain"
)

func ValidRosterRole(role string) bool {
	switch role {
	case RoleBatsman, RoleBowler, RoleAllRounder, RoleWicketKeeper, RoleCaptain:
		return true
	}
	return false
}
