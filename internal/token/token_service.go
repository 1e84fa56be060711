package token

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pitchside/uct-api/config"
	"github.com/pitchside/uct-api/pkg/apperrors"
	jwtpkg "github.com/pitchside/uct-api/pkg/token"
	"github.com/pitchside/uct-api/pkg/utils"
)

const refreshTokenBytes = 40

var ErrInvalidToken = apperrors.Unauthorized("invalid or expired token")

// DeviceInfo is request metadata stored alongside issued tokens so a player
// can tell their sessions apart.
type DeviceInfo struct {
	IP        string
	UserAgent string
	DeviceID  string
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service issues, validates, rotates and revokes session tokens. Access
// tokens are JWTs; refresh tokens are opaque random strings that exist only
// in the database.
type Service struct {
	repo TokenRepository
	cfg  *config.Config
}

func NewService(repo TokenRepository, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// IssueTokenPair signs a fresh access JWT and mints an opaque refresh token,
// persisting both with the caller's device metadata.
func (s *Service) IssueTokenPair(playerID uint, email, role string, device DeviceInfo) (*TokenPair, error) {
	accessTTL := time.Duration(s.cfg.JWT.AccessTokenExpiryMinutes) * time.Minute
	access, err := jwtpkg.GenerateJWT(playerID, email, role, s.cfg.JWT.AccessTokenSecret, accessTTL)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	// The stored expiry must match the signed claims, so parse it back out
	// rather than recomputing from the clock.
	claims, err := jwtpkg.ValidateJWT(access, s.cfg.JWT.AccessTokenSecret)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	refresh, err := utils.GenerateSecureToken(refreshTokenBytes)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	refreshExpiry := time.Now().AddDate(0, 0, s.cfg.JWT.RefreshTokenExpiryDays)

	records := []*TokenRecord{
		{
			PlayerID:  playerID,
			Token:     access,
			Type:      TypeAccess,
			ExpiresAt: claims.ExpiresAt.Time,
			IP:        device.IP,
			UserAgent: device.UserAgent,
			DeviceID:  device.DeviceID,
		},
		{
			PlayerID:  playerID,
			Token:     refresh,
			Type:      TypeRefresh,
			ExpiresAt: refreshExpiry,
			IP:        device.IP,
			UserAgent: device.UserAgent,
			DeviceID:  device.DeviceID,
		},
	}
	for _, rec := range records {
		if err := s.repo.Create(rec); err != nil {
			return nil, apperrors.Internal(err)
		}
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ValidateAccess checks both the JWT signature and the database record, so
// a revoked session fails even while the JWT itself is still within expiry.
func (s *Service) ValidateAccess(tokenString string) (*jwtpkg.Claims, error) {
	claims, err := jwtpkg.ValidateJWT(tokenString, s.cfg.JWT.AccessTokenSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}
	record, err := s.repo.FindLive(tokenString, TypeAccess)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, apperrors.Internal(err)
	}
	if record.PlayerID != claims.PlayerID {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// FindRefresh resolves a live refresh token to its record, so callers can
// identify the session's player before rotating.
func (s *Service) FindRefresh(refreshString string) (*TokenRecord, error) {
	record, err := s.repo.FindLive(refreshString, TypeRefresh)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, apperrors.Internal(err)
	}
	return record, nil
}

// RotateRefresh consumes a refresh token and issues a fresh pair. Refresh
// tokens are single use: the consumed record is revoked before the new pair
// is minted.
func (s *Service) RotateRefresh(refreshString string, playerID uint, email, role string, device DeviceInfo) (*TokenPair, error) {
	record, err := s.repo.FindLive(refreshString, TypeRefresh)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, apperrors.Internal(err)
	}
	if record.PlayerID != playerID {
		return nil, ErrInvalidToken
	}
	if err := s.repo.Revoke(record.ID); err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.IssueTokenPair(playerID, email, role, device)
}

// RevokeAll kills every live session for the player.
func (s *Service) RevokeAll(playerID uint) error {
	if err := s.repo.RevokeAllForPlayer(playerID); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// PurgeExpired deletes expired and revoked records. Driven by the cron job.
func (s *Service) PurgeExpired() (int64, error) {
	return s.repo.PurgeExpired(time.Now())
}
