package player

import "gorm.io/gorm"

// Account roles.
const (
	RolePlayer  = "player"
	RoleCaptain = "captain"
	RoleAdmin   = "admin"
)

// Registration status. The transition pending -> completed is one-way.
const (
	RegistrationPending   = "pending"
	RegistrationCompleted = "completed"
)

// Player is a registered participant. Email is stored lowercase and is the
// login identifier.
type Player struct {
	gorm.Model
	FirstName          string `gorm:"size:128;not null" json:"first_name"`
	LastName           string `gorm:"size:128;not null" json:"last_name"`
	Email              string `gorm:"uniqueIndex;size:256;not null" json:"email"`
	Password           string `gorm:"size:256;not null" json:"-"`
	Role               string `gorm:"size:16;default:'player'" json:"role"`
	IsActive           bool   `gorm:"default:true" json:"is_active"`
	IsVerified         bool   `gorm:"default:false" json:"is_verified"`
	RegistrationStatus string `gorm:"size:16;default:'pending'" json:"registration_status"`
	BattingStyle       string `gorm:"size:32" json:"batting_style,omitempty"`
	BowlingStyle       string `gorm:"size:64" json:"bowling_style,omitempty"`
	Age                *int   `json:"age,omitempty"`
	UniversityID       *uint  `gorm:"index" json:"university_id,omitempty"`
	JerseyNumber       *int   `json:"jersey_number,omitempty"`
	Phone              string `gorm:"size:32" json:"phone,omitempty"`
	ImageURL           string `gorm:"size:512" json:"image_url,omitempty"`
}

// FullName is used in transactional email.
func (p *Player) FullName() string {
	return p.FirstName + " " + p.LastName
}

// ProfileComplete reports whether every field required for team selection
// is on file. Once true the registration status flips to completed and
// never reverts.
func (p *Player) ProfileComplete() bool {
	return p.Age != nil && p.UniversityID != nil && p.JerseyNumber != nil && p.Phone != ""
}
