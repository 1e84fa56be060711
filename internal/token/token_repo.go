package token

import (
	"time"

	"gorm.io/gorm"
)

type TokenRepository interface {
	Create(record *TokenRecord) error
	FindLive(token string, tokenType TokenType) (*TokenRecord, error)
	Revoke(id uint) error
	RevokeAllForPlayer(playerID uint) error
	PurgeExpired(before time.Time) (int64, error)
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(record *TokenRecord) error {
	return r.db.Create(record).Error
}

func (r *tokenRepository) FindLive(token string, tokenType TokenType) (*TokenRecord, error) {
	var record TokenRecord
	err := r.db.
		Where("token = ? AND type = ? AND revoked = ? AND expires_at > ?",
			token, tokenType, false, time.Now()).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *tokenRepository) Revoke(id uint) error {
	return r.db.Model(&TokenRecord{}).
		Where("id = ?", id).
		Update("revoked", true).Error
}

func (r *tokenRepository) RevokeAllForPlayer(playerID uint) error {
	return r.db.Model(&TokenRecord{}).
		Where("player_id = ? AND revoked = ?", playerID, false).
		Update("revoked", true).Error
}

func (r *tokenRepository) PurgeExpired(before time.Time) (int64, error) {
	res := r.db.Unscoped().
		Where("expires_at < ? OR revoked = ?", before, true).
		Delete(&TokenRecord{})
	return res.RowsAffected, res.Error
}

type OTPRepository interface {
	Create(record *OTPRecord) error
	FindCurrent(playerID uint, otpType OTPType) (*OTPRecord, error)
	Save(record *OTPRecord) error
	InvalidatePrior(playerID uint, otpType OTPType) error
	InvalidateAll(playerID uint, email string) error
	PurgeExpired(before time.Time) (int64, error)
}

type otpRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) Create(record *OTPRecord) error {
	return r.db.Create(record).Error
}

// FindCurrent returns the single unused, unexpired code for the player and
// type. Most recent wins if older rows somehow survived invalidation.
func (r *otpRepository) FindCurrent(playerID uint, otpType OTPType) (*OTPRecord, error) {
	var record OTPRecord
	err := r.db.
		Where("player_id = ? AND type = ? AND used = ? AND expires_at > ?",
			playerID, otpType, false, time.Now()).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *otpRepository) Save(record *OTPRecord) error {
	return r.db.Save(record).Error
}

func (r *otpRepository) InvalidatePrior(playerID uint, otpType OTPType) error {
	return r.db.Model(&OTPRecord{}).
		Where("player_id = ? AND type = ? AND used = ?", playerID, otpType, false).
		Update("used", true).Error
}

func (r *otpRepository) InvalidateAll(playerID uint, email string) error {
	return r.db.Model(&OTPRecord{}).
		Where("(player_id = ? OR email = ?) AND used = ?", playerID, email, false).
		Update("used", true).Error
}

func (r *otpRepository) PurgeExpired(before time.Time) (int64, error) {
	res := r.db.Unscoped().
		Where("expires_at < ? OR used = ?", before, true).
		Delete(&OTPRecord{})
	return res.RowsAffected, res.Error
}
