package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeOTPRepo struct {
	records []*OTPRecord
	nextID  uint
}

func (f *fakeOTPRepo) Create(record *OTPRecord) error {
	f.nextID++
	record.ID = f.nextID
	record.CreatedAt = time.Now()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeOTPRepo) FindCurrent(playerID uint, otpType OTPType) (*OTPRecord, error) {
	now := time.Now()
	var latest *OTPRecord
	for _, r := range f.records {
		if r.PlayerID == playerID && r.Type == otpType && !r.Used && !r.Expired(now) {
			if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
				latest = r
			}
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (f *fakeOTPRepo) Save(record *OTPRecord) error {
	for i, r := range f.records {
		if r.ID == record.ID {
			f.records[i] = record
		}
	}
	return nil
}

func (f *fakeOTPRepo) InvalidatePrior(playerID uint, otpType OTPType) error {
	for _, r := range f.records {
		if r.PlayerID == playerID && r.Type == otpType && !r.Used {
			r.Used = true
		}
	}
	return nil
}

func (f *fakeOTPRepo) InvalidateAll(playerID uint, email string) error {
	for _, r := range f.records {
		if (r.PlayerID == playerID || r.Email == email) && !r.Used {
			r.Used = true
		}
	}
	return nil
}

func (f *fakeOTPRepo) PurgeExpired(before time.Time) (int64, error) {
	var kept []*OTPRecord
	var purged int64
	for _, r := range f.records {
		if r.ExpiresAt.Before(before) || r.Used {
			purged++
			continue
		}
		kept = append(kept, r)
	}
	f.records = kept
	return purged, nil
}

func TestIssueProducesSixDigitCodeByDefault(t *testing.T) {
	repo := &fakeOTPRepo{}
	svc := NewOTPService(repo, 3)

	rec, err := svc.Issue(5, "j.mendis@mrt.lk", OTPAccountVerification, 30*time.Minute, 0)
	require.NoError(t, err)
	assert.Len(t, rec.Code, 6)
	assert.Regexp(t, `^\d{6}$`, rec.Code)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), rec.ExpiresAt, time.Minute)
	assert.Zero(t, rec.Attempts)
}

func TestIssueInvalidatesPriorCodesOfSameType(t *testing.T) {
	repo := &fakeOTPRepo{}
	svc := NewOTPService(repo, 3)

	old, err := svc.Issue(5, "j.mendis@mrt.lk", OTPPasswordReset, time.Hour, 6)
	require.NoError(t, err)
	fresh, err := svc.Issue(5, "j.mendis@mrt.lk", OTPPasswordReset, time.Hour, 6)
	require.NoError(t, err)

	assert.True(t, old.Used)
	assert.False(t, fresh.Used)

	// Only the fresh code verifies.
	ok, err := svc.Verify(5, old.Code, OTPPasswordReset)
	require.NoError(t, err)
	if old.Code != fresh.Code {
		assert.False(t, ok)
	}
}

func TestVerifyIsSingleUse(t *testing.T) {
	repo := &fakeOTPRepo{}
	svc := NewOTPService(repo, 3)

	rec, err := svc.Issue(5, "j.mendis@mrt.lk", OTPLoginVerification, 15*time.Minute, 6)
	require.NoError(t, err)

	ok, err := svc.Verify(5, rec.Code, OTPLoginVerification)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second submission of the same code fails.
	ok, err = svc.Verify(5, rec.Code, OTPLoginVerification)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyLocksAfterThreeFailedAttempts(t *testing.T) {
	repo := &fakeOTPRepo{}
	svc := NewOTPService(repo, 3)

	rec, err := svc.Issue(5, "j.mendis@mrt.lk", OTPAccountVerification, 30*time.Minute, 6)
	require.NoError(t, err)

	wrong := "000000"
	if rec.Code == wrong {
		wrong = "000001"
	}

	for i := 0; i < 3; i++ {
		ok, err := svc.Verify(5, wrong, OTPAccountVerification)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.True(t, rec.Used)

	// Even the correct code is dead once the record is locked.
	ok, err := svc.Verify(5, rec.Code, OTPAccountVerification)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyFailsClosedWithoutCurrentCode(t *testing.T) {
	repo := &fakeOTPRepo{}
	svc := NewOTPService(repo, 3)

	ok, err := svc.Verify(5, "123456", OTPAccountVerification)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyRejectsExpiredCode(t *testing.T) {
	repo := &fakeOTPRepo{}
	svc := NewOTPService(repo, 3)

	rec, err := svc.Issue(5, "j.mendis@mrt.lk", OTPPasswordReset, time.Hour, 6)
	require.NoError(t, err)
	rec.ExpiresAt = time.Now().Add(-time.Minute)

	ok, err := svc.Verify(5, rec.Code, OTPPasswordReset)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidateAllKillsEveryOutstandingCode(t *testing.T) {
	repo := &fakeOTPRepo{}
	svc := NewOTPService(repo, 3)

	a, err := svc.Issue(5, "j.mendis@mrt.lk", OTPAccountVerification, time.Hour, 6)
	require.NoError(t, err)
	b, err := svc.Issue(5, "j.mendis@mrt.lk", OTPPasswordReset, time.Hour, 6)
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateAll(5, "j.mendis@mrt.lk"))
	assert.True(t, a.Used)
	assert.True(t, b.Used)
}
