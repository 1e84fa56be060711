package token

import (
	"crypto/subtle"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pitchside/uct-api/pkg/apperrors"
	"github.com/pitchside/uct-api/pkg/utils"
)

const defaultOTPDigits = 6

// OTPService issues and verifies one-time numeric codes for account
// verification, password resets and login challenges.
type OTPService struct {
	repo        OTPRepository
	maxAttempts int
}

func NewOTPService(repo OTPRepository, maxAttempts int) *OTPService {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &OTPService{repo: repo, maxAttempts: maxAttempts}
}

// Issue invalidates any outstanding code of the same type, then creates a
// fresh one. Returns the plaintext code for delivery by mail.
func (s *OTPService) Issue(playerID uint, email string, otpType OTPType, ttl time.Duration, digits int) (*OTPRecord, error) {
	if digits <= 0 {
		digits = defaultOTPDigits
	}
	if err := s.repo.InvalidatePrior(playerID, otpType); err != nil {
		return nil, apperrors.Internal(err)
	}
	code, err := utils.GenerateNumericCode(digits)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	record := &OTPRecord{
		PlayerID:  playerID,
		Email:     email,
		Code:      code,
		Type:      otpType,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.repo.Create(record); err != nil {
		return nil, apperrors.Internal(err)
	}
	return record, nil
}

// Verify checks a submitted code. It fails closed: no current code, an
// expired code or a used code all count as failure. Every submission burns
// an attempt before comparison, and the final allowed attempt locks the
// code whether or not it matched later submissions.
func (s *OTPService) Verify(playerID uint, code string, otpType OTPType) (bool, error) {
	record, err := s.repo.FindCurrent(playerID, otpType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperrors.Internal(err)
	}

	record.Attempts++
	match := subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) == 1
	if match {
		record.Used = true
	} else if record.Attempts >= s.maxAttempts {
		// Lock the code after the last failed attempt.
		record.Used = true
	}
	if err := s.repo.Save(record); err != nil {
		return false, apperrors.Internal(err)
	}
	return match, nil
}

// InvalidateAll marks every outstanding code for the player as used.
// Called on password changes and account deactivation.
func (s *OTPService) InvalidateAll(playerID uint, email string) error {
	if err := s.repo.InvalidateAll(playerID, email); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// PurgeExpired deletes expired and used codes. Driven by the cron job.
func (s *OTPService) PurgeExpired() (int64, error) {
	return s.repo.PurgeExpired(time.Now())
}
