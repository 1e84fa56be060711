package token

import (
	"time"

	"gorm.io/gorm"
)

type TokenType string

const (
	TypeAccess  TokenType = "access"
	TypeRefresh TokenType = "refresh"
	TypeReset   TokenType = "reset"
	TypeVerify  TokenType = "verify"
)

// TokenRecord is the server-side ledger entry for every issued token.
// Access tokens are also self-contained JWTs; keeping a row for them lets
// logout and deactivation revoke sessions before the JWT expires.
type TokenRecord struct {
	gorm.Model
	PlayerID  uint      `gorm:"index;not null" json:"player_id"`
	Token     string    `gorm:"uniqueIndex;size:512;not null" json:"-"`
	Type      TokenType `gorm:"size:16;index;not null" json:"type"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	Revoked   bool      `gorm:"default:false" json:"revoked"`
	IP        string    `gorm:"size:64" json:"ip,omitempty"`
	UserAgent string    `gorm:"size:256" json:"user_agent,omitempty"`
	DeviceID  string    `gorm:"size:128" json:"device_id,omitempty"`
}

// Live reports whether the record is still usable.
func (t *TokenRecord) Live(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

type OTPType string

const (
	OTPAccountVerification OTPType = "account_verification"
	OTPPasswordReset       OTPType = "password_reset"
	OTPLoginVerification   OTPType = "login_verification"
	OTPEmailChange         OTPType = "email_change"
)

// OTPRecord holds a one-time numeric code. At most one unused, unexpired
// code exists per (player, type); issuing a new one invalidates the rest.
type OTPRecord struct {
	gorm.Model
	PlayerID  uint      `gorm:"index;not null" json:"player_id"`
	Email     string    `gorm:"size:256;index" json:"email"`
	Code      string    `gorm:"size:16;not null" json:"-"`
	Type      OTPType   `gorm:"size:32;index;not null" json:"type"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	Used      bool      `gorm:"default:false" json:"used"`
	Attempts  int       `gorm:"default:0" json:"attempts"`
}

func (o *OTPRecord) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
