package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pitchside/uct-api/config"
)

type fakeTokenRepo struct {
	records []*TokenRecord
	nextID  uint
}

func (f *fakeTokenRepo) Create(record *TokenRecord) error {
	f.nextID++
	record.ID = f.nextID
	f.records = append(f.records, record)
	return nil
}

func (f *fakeTokenRepo) FindLive(token string, tokenType TokenType) (*TokenRecord, error) {
	now := time.Now()
	for _, r := range f.records {
		if r.Token == token && r.Type == tokenType && r.Live(now) {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTokenRepo) Revoke(id uint) error {
	for _, r := range f.records {
		if r.ID == id {
			r.Revoked = true
		}
	}
	return nil
}

func (f *fakeTokenRepo) RevokeAllForPlayer(playerID uint) error {
	for _, r := range f.records {
		if r.PlayerID == playerID {
			r.Revoked = true
		}
	}
	return nil
}

func (f *fakeTokenRepo) PurgeExpired(before time.Time) (int64, error) {
	var kept []*TokenRecord
	var purged int64
	for _, r := range f.records {
		if r.ExpiresAt.Before(before) || r.Revoked {
			purged++
			continue
		}
		kept = append(kept, r)
	}
	f.records = kept
	return purged, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.AccessTokenSecret = "unit-test-secret"
	cfg.JWT.AccessTokenExpiryMinutes = 60
	cfg.JWT.RefreshTokenExpiryDays = 30
	return cfg
}

func TestIssueTokenPairPersistsBothRecords(t *testing.T) {
	repo := &fakeTokenRepo{}
	svc := NewService(repo, testConfig())

	pair, err := svc.IssueTokenPair(7, "b.sangakkara@uom.lk", "player", DeviceInfo{IP: "10.0.0.1"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	// 40 random bytes hex-encoded.
	assert.Len(t, pair.RefreshToken, 80)
	require.Len(t, repo.records, 2)

	access, refresh := repo.records[0], repo.records[1]
	assert.Equal(t, TypeAccess, access.Type)
	assert.Equal(t, TypeRefresh, refresh.Type)
	assert.Equal(t, "10.0.0.1", access.IP)
	// Refresh expiry is about 30 days out.
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), refresh.ExpiresAt, time.Minute)
	// Access expiry mirrors the signed claims, about an hour out.
	assert.WithinDuration(t, time.Now().Add(time.Hour), access.ExpiresAt, time.Minute)
}

func TestValidateAccessAcceptsFreshToken(t *testing.T) {
	repo := &fakeTokenRepo{}
	svc := NewService(repo, testConfig())

	pair, err := svc.IssueTokenPair(7, "b.sangakkara@uom.lk", "captain", DeviceInfo{})
	require.NoError(t, err)

	claims, err := svc.ValidateAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.PlayerID)
	assert.Equal(t, "captain", claims.Role)
}

func TestValidateAccessRejectsRevokedSession(t *testing.T) {
	repo := &fakeTokenRepo{}
	svc := NewService(repo, testConfig())

	pair, err := svc.IssueTokenPair(7, "b.sangakkara@uom.lk", "player", DeviceInfo{})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAll(7))

	_, err = svc.ValidateAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRotateRefreshInvalidatesConsumedToken(t *testing.T) {
	repo := &fakeTokenRepo{}
	svc := NewService(repo, testConfig())

	first, err := svc.IssueTokenPair(3, "k.perera@ucsc.lk", "player", DeviceInfo{})
	require.NoError(t, err)

	second, err := svc.RotateRefresh(first.RefreshToken, 3, "k.perera@ucsc.lk", "player", DeviceInfo{})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The consumed refresh token is single use.
	_, err = svc.RotateRefresh(first.RefreshToken, 3, "k.perera@ucsc.lk", "player", DeviceInfo{})
	assert.ErrorIs(t, err, ErrInvalidToken)

	// The replacement still works.
	_, err = svc.RotateRefresh(second.RefreshToken, 3, "k.perera@ucsc.lk", "player", DeviceInfo{})
	assert.NoError(t, err)
}

func TestRotateRefreshRejectsWrongPlayer(t *testing.T) {
	repo := &fakeTokenRepo{}
	svc := NewService(repo, testConfig())

	pair, err := svc.IssueTokenPair(3, "k.perera@ucsc.lk", "player", DeviceInfo{})
	require.NoError(t, err)

	_, err = svc.RotateRefresh(pair.RefreshToken, 99, "intruder@other.lk", "player", DeviceInfo{})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPurgeExpiredDropsDeadRecords(t *testing.T) {
	repo := &fakeTokenRepo{}
	svc := NewService(repo, testConfig())

	_, err := svc.IssueTokenPair(1, "a@x.lk", "player", DeviceInfo{})
	require.NoError(t, err)
	repo.records[0].ExpiresAt = time.Now().Add(-time.Hour)
	repo.records[1].Revoked = true

	purged, err := svc.PurgeExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)
	assert.Empty(t, repo.records)
}
