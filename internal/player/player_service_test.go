package player

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pitchside/uct-api/config"
	"github.com/pitchside/uct-api/internal/team"
	"github.com/pitchside/uct-api/internal/token"
	"github.com/pitchside/uct-api/pkg/apperrors"
)

// --- fakes ---

type fakePlayerRepo struct {
	players []*Player
	nextID  uint
}

func (f *fakePlayerRepo) Create(p *Player) error {
	for _, existing := range f.players {
		if existing.Email == p.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	p.ID = f.nextID
	f.players = append(f.players, p)
	return nil
}

func (f *fakePlayerRepo) FindByID(id uint) (*Player, error) {
	for _, p := range f.players {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePlayerRepo) FindByEmail(email string) (*Player, error) {
	for _, p := range f.players {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePlayerRepo) Update(p *Player) error {
	for i, existing := range f.players {
		if existing.ID == p.ID {
			f.players[i] = p
		}
	}
	return nil
}

func (f *fakePlayerRepo) JerseyTaken(universityID uint, jerseyNumber int, excludePlayerID uint) (bool, error) {
	for _, p := range f.players {
		if p.ID == excludePlayerID || p.UniversityID == nil || p.JerseyNumber == nil {
			continue
		}
		if *p.UniversityID == universityID && *p.JerseyNumber == jerseyNumber {
			return true, nil
		}
	}
	return false, nil
}

type fakeTeamRepo struct {
	teams  []*team.Team
	roster []*team.TeamPlayer
	nextID uint
}

func (f *fakeTeamRepo) CreateTeam(t *team.Team) error {
	for _, existing := range f.teams {
		if existing.Name == t.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	t.ID = f.nextID
	f.teams = append(f.teams, t)
	return nil
}

func (f *fakeTeamRepo) GetTeamByID(id uint) (*team.Team, error) {
	for _, t := range f.teams {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTeamRepo) GetTeamByName(name string) (*team.Team, error) {
	for _, t := range f.teams {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTeamRepo) GetAllTeams(page, limit int, universityID uint) ([]team.Team, int64, error) {
	return nil, 0, nil
}

func (f *fakeTeamRepo) UpdateTeam(t *team.Team) error { return nil }
func (f *fakeTeamRepo) DeleteTeam(id uint) error      { return nil }

func (f *fakeTeamRepo) AddTeamPlayer(tp *team.TeamPlayer) error {
	for _, existing := range f.roster {
		if existing.TeamID == tp.TeamID && existing.PlayerID == tp.PlayerID {
			return gorm.ErrDuplicatedKey
		}
	}
	f.roster = append(f.roster, tp)
	return nil
}

func (f *fakeTeamRepo) GetRoster(teamID uint) ([]team.TeamPlayer, error) { return nil, nil }
func (f *fakeTeamRepo) RemoveTeamPlayer(teamID, playerID uint) error     { return nil }

type fakeTokenStore struct {
	records []*token.TokenRecord
	nextID  uint
}

func (f *fakeTokenStore) Create(r *token.TokenRecord) error {
	f.nextID++
	r.ID = f.nextID
	f.records = append(f.records, r)
	return nil
}

func (f *fakeTokenStore) FindLive(tok string, tokenType token.TokenType) (*token.TokenRecord, error) {
	now := time.Now()
	for _, r := range f.records {
		if r.Token == tok && r.Type == tokenType && r.Live(now) {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTokenStore) Revoke(id uint) error {
	for _, r := range f.records {
		if r.ID == id {
			r.Revoked = true
		}
	}
	return nil
}

func (f *fakeTokenStore) RevokeAllForPlayer(playerID uint) error {
	for _, r := range f.records {
		if r.PlayerID == playerID {
			r.Revoked = true
		}
	}
	return nil
}

func (f *fakeTokenStore) PurgeExpired(before time.Time) (int64, error) { return 0, nil }

type fakeOTPStore struct {
	records []*token.OTPRecord
	nextID  uint
}

func (f *fakeOTPStore) Create(r *token.OTPRecord) error {
	f.nextID++
	r.ID = f.nextID
	r.CreatedAt = time.Now()
	f.records = append(f.records, r)
	return nil
}

func (f *fakeOTPStore) FindCurrent(playerID uint, otpType token.OTPType) (*token.OTPRecord, error) {
	now := time.Now()
	var latest *token.OTPRecord
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

func (f *fakeOTPStore) Save(r *token.OTPRecord) error { return nil }

func (f *fakeOTPStore) InvalidatePrior(playerID uint, otpType token.OTPType) error {
	for _, r := range f.records {
		if r.PlayerID == playerID && r.Type == otpType && !r.Used {
			r.Used = true
		}
	}
	return nil
}

func (f *fakeOTPStore) InvalidateAll(playerID uint, email string) error {
	for _, r := range f.records {
		if (r.PlayerID == playerID || r.Email == email) && !r.Used {
			r.Used = true
		}
	}
	return nil
}

func (f *fakeOTPStore) PurgeExpired(before time.Time) (int64, error) { return 0, nil }

func (f *fakeOTPStore) currentCode(playerID uint, otpType token.OTPType) string {
	rec, err := f.FindCurrent(playerID, otpType)
	if err != nil {
		return ""
	}
	return rec.Code
}

type recordingMailer struct {
	sent []string
}

func (m *recordingMailer) SendVerificationEmail(to, name, code string) error {
	m.sent = append(m.sent, "verification:"+to)
	return nil
}
func (m *recordingMailer) SendWelcomeEmail(to, name string) error {
	m.sent = append(m.sent, "welcome:"+to)
	return nil
}
func (m *recordingMailer) SendPasswordResetEmail(to, name, code, resetURL string) error {
	m.sent = append(m.sent, "reset:"+to)
	return nil
}
func (m *recordingMailer) SendPasswordChangedEmail(to, name string) error {
	m.sent = append(m.sent, "changed:"+to)
	return nil
}
func (m *recordingMailer) SendLoginCodeEmail(to, name, code string) error {
	m.sent = append(m.sent, "login-code:"+to)
	return nil
}
func (m *recordingMailer) SendTeamCreatedEmail(to, name, teamName string) error {
	m.sent = append(m.sent, "team:"+to)
	return nil
}

type fixture struct {
	svc     *Service
	players *fakePlayerRepo
	teams   *fakeTeamRepo
	tokens  *fakeTokenStore
	otps    *fakeOTPStore
	mail    *recordingMailer
}

func newFixture() *fixture {
	cfg := &config.Config{}
	cfg.App.FrontendURL = "http://localhost:3000"
	cfg.JWT.AccessTokenSecret = "unit-test-secret"
	cfg.JWT.AccessTokenExpiryMinutes = 60
	cfg.JWT.RefreshTokenExpiryDays = 30
	cfg.OTP.Digits = 6
	cfg.OTP.VerificationExpiryMinutes = 30
	cfg.OTP.PasswordResetExpiryMinutes = 60
	cfg.OTP.LoginExpiryMinutes = 15
	cfg.OTP.MaxAttempts = 3

	players := &fakePlayerRepo{}
	teams := &fakeTeamRepo{}
	tokens := &fakeTokenStore{}
	otps := &fakeOTPStore{}
	mail := &recordingMailer{}

	svc := NewService(
		players,
		teams,
		token.NewService(tokens, cfg),
		token.NewOTPService(otps, cfg.OTP.MaxAttempts),
		mail,
		cfg,
	)
	return &fixture{svc: svc, players: players, teams: teams, tokens: tokens, otps: otps, mail: mail}
}

func (fx *fixture) register(t *testing.T, email string) *Player {
	t.Helper()
	p, err := fx.svc.Register(RegisterInput{
		FirstName: "Nuwan",
		LastName:  "Fernando",
		Email:     email,
		Password:  "str0ng-password",
	})
	require.NoError(t, err)
	return p
}

func (fx *fixture) registerVerified(t *testing.T, email string) *Player {
	t.Helper()
	p := fx.register(t, email)
	code := fx.otps.currentCode(p.ID, token.OTPAccountVerification)
	require.NotEmpty(t, code)
	verified, err := fx.svc.VerifyAccount(p.ID, code)
	require.NoError(t, err)
	return verified
}

// --- tests ---

func TestRegisterNormalizesEmailAndMailsCode(t *testing.T) {
	fx := newFixture()

	p := fx.register(t, "  N.Fernando@CMB.lk ")
	assert.Equal(t, "n.fernando@cmb.lk", p.Email)
	assert.Equal(t, RolePlayer, p.Role)
	assert.False(t, p.IsVerified)
	assert.Equal(t, RegistrationPending, p.RegistrationStatus)
	assert.Contains(t, fx.mail.sent, "verification:n.fernando@cmb.lk")
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	fx := newFixture()
	fx.register(t, "n.fernando@cmb.lk")

	_, err := fx.svc.Register(RegisterInput{
		FirstName: "Other",
		LastName:  "Person",
		Email:     "N.FERNANDO@cmb.lk",
		Password:  "another-password",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestVerifyAccountWithEmailedCode(t *testing.T) {
	fx := newFixture()
	p := fx.register(t, "n.fernando@cmb.lk")

	_, err := fx.svc.VerifyAccount(p.ID, "999999")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	// A fresh code is needed after the bad attempt burned one.
	require.NoError(t, fx.svc.ResendVerification(p.Email))
	code := fx.otps.currentCode(p.ID, token.OTPAccountVerification)
	verified, err := fx.svc.VerifyAccount(p.ID, code)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.Contains(t, fx.mail.sent, "welcome:n.fernando@cmb.lk")
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	fx := newFixture()
	p := fx.registerVerified(t, "n.fernando@cmb.lk")

	// Unknown email.
	_, _, err := fx.svc.Login("nobody@cmb.lk", "str0ng-password", token.DeviceInfo{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Wrong password.
	_, _, err = fx.svc.Login(p.Email, "wrong-password", token.DeviceInfo{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Deactivated account.
	p.IsActive = false
	_, _, err = fx.svc.Login(p.Email, "str0ng-password", token.DeviceInfo{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	p.IsActive = true

	// Unverified account.
	p.IsVerified = false
	_, _, err = fx.svc.Login(p.Email, "str0ng-password", token.DeviceInfo{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginIssuesTokenPair(t *testing.T) {
	fx := newFixture()
	p := fx.registerVerified(t, "n.fernando@cmb.lk")

	got, pair, err := fx.svc.Login(p.Email, "str0ng-password", token.DeviceInfo{IP: "10.1.2.3"})
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Len(t, pair.RefreshToken, 80)
}

func TestLogoutRevokesAllSessions(t *testing.T) {
	fx := newFixture()
	p := fx.registerVerified(t, "n.fernando@cmb.lk")

	_, pair, err := fx.svc.Login(p.Email, "str0ng-password", token.DeviceInfo{})
	require.NoError(t, err)
	require.NoError(t, fx.svc.Logout(p.ID))

	_, err = fx.svc.RefreshTokens(pair.RefreshToken, token.DeviceInfo{})
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestResetPasswordFlow(t *testing.T) {
	fx := newFixture()
	p := fx.registerVerified(t, "n.fernando@cmb.lk")

	fx.svc.ForgotPassword(p.Email)
	code := fx.otps.currentCode(p.ID, token.OTPPasswordReset)
	require.NotEmpty(t, code)
	assert.Contains(t, fx.mail.sent, "reset:n.fernando@cmb.lk")

	require.NoError(t, fx.svc.ResetPassword(p.ID, code, "fresh-password-1"))

	_, _, err := fx.svc.Login(p.Email, "str0ng-password", token.DeviceInfo{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = fx.svc.Login(p.Email, "fresh-password-1", token.DeviceInfo{})
	assert.NoError(t, err)
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	fx := newFixture()
	fx.svc.ForgotPassword("ghost@cmb.lk")
	assert.Empty(t, fx.mail.sent)
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	fx := newFixture()
	p := fx.registerVerified(t, "n.fernando@cmb.lk")

	err := fx.svc.ChangePassword(p.ID, "wrong", "fresh-password-1")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	require.NoError(t, fx.svc.ChangePassword(p.ID, "str0ng-password", "fresh-password-1"))
	_, _, err = fx.svc.Login(p.Email, "fresh-password-1", token.DeviceInfo{})
	assert.NoError(t, err)
}

func intPtr(v int) *int    { return &v }
func uintPtr(v uint) *uint { return &v }
func strPtr(v string) *string {
	return &v
}

func TestProfileCompletionIsOneWay(t *testing.T) {
	fx := newFixture()
	p := fx.registerVerified(t, "n.fernando@cmb.lk")

	// Partial update keeps the status pending.
	updated, err := fx.svc.UpdateProfile(p.ID, ProfilePatch{Age: intPtr(21)})
	require.NoError(t, err)
	assert.Equal(t, RegistrationPending, updated.RegistrationStatus)

	// Supplying the rest completes it.
	updated, err = fx.svc.UpdateProfile(p.ID, ProfilePatch{
		UniversityID: uintPtr(4),
		JerseyNumber: intPtr(7),
		Phone:        strPtr("+94771234567"),
	})
	require.NoError(t, err)
	assert.Equal(t, RegistrationCompleted, updated.RegistrationStatus)

	// Later edits never revert it.
	updated, err = fx.svc.UpdateProfile(p.ID, ProfilePatch{FirstName: strPtr("Nuwanpriya")})
	require.NoError(t, err)
	assert.Equal(t, RegistrationCompleted, updated.RegistrationStatus)
}

func TestJerseyNumberConflictWithinUniversity(t *testing.T) {
	fx := newFixture()
	first := fx.registerVerified(t, "first@cmb.lk")
	second := fx.registerVerified(t, "second@cmb.lk")

	_, err := fx.svc.UpdateProfile(first.ID, ProfilePatch{
		Age:          intPtr(22),
		UniversityID: uintPtr(4),
		JerseyNumber: intPtr(10),
		Phone:        strPtr("+94770000001"),
	})
	require.NoError(t, err)

	// Same number at the same university is rejected.
	_, err = fx.svc.UpdateProfile(second.ID, ProfilePatch{
		UniversityID: uintPtr(4),
		JerseyNumber: intPtr(10),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	// Same number at a different university is fine.
	_, err = fx.svc.UpdateProfile(second.ID, ProfilePatch{
		UniversityID: uintPtr(5),
		JerseyNumber: intPtr(10),
	})
	assert.NoError(t, err)
}

func TestCreateTeamRequiresCompletedProfile(t *testing.T) {
	fx := newFixture()
	p := fx.registerVerified(t, "n.fernando@cmb.lk")

	_, err := fx.svc.CreateTeam(p.ID, "Colombo Kings", 5000)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestCreateTeamPromotesToCaptain(t *testing.T) {
	fx := newFixture()
	p := fx.registerVerified(t, "n.fernando@cmb.lk")
	_, err := fx.svc.UpdateProfile(p.ID, ProfilePatch{
		Age:          intPtr(23),
		UniversityID: uintPtr(4),
		JerseyNumber: intPtr(10),
		Phone:        strPtr("+94770000001"),
	})
	require.NoError(t, err)

	created, err := fx.svc.CreateTeam(p.ID, "Colombo Kings", 5000)
	require.NoError(t, err)
	assert.Equal(t, p.ID, created.CaptainID)
	assert.Equal(t, uint(4), created.UniversityID)

	reloaded, err := fx.svc.GetProfile(p.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleCaptain, reloaded.Role)
	assert.Contains(t, fx.mail.sent, "team:n.fernando@cmb.lk")

	// Duplicate team name conflicts.
	_, err = fx.svc.CreateTeam(p.ID, "Colombo Kings", 1000)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestJoinTeamDuplicateConflicts(t *testing.T) {
	fx := newFixture()
	captain := fx.registerVerified(t, "captain@cmb.lk")
	_, err := fx.svc.UpdateProfile(captain.ID, ProfilePatch{
		Age:          intPtr(24),
		UniversityID: uintPtr(4),
		JerseyNumber: intPtr(1),
		Phone:        strPtr("+94770000009"),
	})
	require.NoError(t, err)
	created, err := fx.svc.CreateTeam(captain.ID, "Colombo Kings", 5000)
	require.NoError(t, err)

	member := fx.registerVerified(t, "member@cmb.lk")
	_, err = fx.svc.UpdateProfile(member.ID, ProfilePatch{
		Age:          intPtr(20),
		UniversityID: uintPtr(4),
		JerseyNumber: intPtr(2),
		Phone:        strPtr("+94770000008"),
	})
	require.NoError(t, err)

	tp, err := fx.svc.JoinTeam(member.ID, created.ID, team.RoleBowler)
	require.NoError(t, err)
	assert.Equal(t, team.RoleBowler, tp.Role)

	_, err = fx.svc.JoinTeam(member.ID, created.ID, team.RoleBowler)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestDeactivateKillsSessionsAndCodes(t *testing.T) {
	fx := newFixture()
	p := fx.registerVerified(t, "n.fernando@cmb.lk")
	_, pair, err := fx.svc.Login(p.Email, "str0ng-password", token.DeviceInfo{})
	require.NoError(t, err)
	require.NoError(t, fx.svc.GenerateLoginOTP(p.ID))

	require.NoError(t, fx.svc.Deactivate(p.ID))

	reloaded, err := fx.svc.GetProfile(p.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
	assert.Empty(t, fx.otps.currentCode(p.ID, token.OTPLoginVerification))

	_, err = fx.svc.RefreshTokens(pair.RefreshToken, token.DeviceInfo{})
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestLoginOTPRoundTrip(t *testing.T) {
	fx := newFixture()
	p := fx.registerVerified(t, "n.fernando@cmb.lk")

	require.NoError(t, fx.svc.GenerateLoginOTP(p.ID))
	code := fx.otps.currentCode(p.ID, token.OTPLoginVerification)
	require.NotEmpty(t, code)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	err := fx.svc.VerifyLoginOTP(p.ID, wrong)
	require.Error(t, err)

	// FindCurrent still returns the code until it is locked or consumed.
	if remaining := fx.otps.currentCode(p.ID, token.OTPLoginVerification); remaining != "" {
		require.NoError(t, fx.svc.VerifyLoginOTP(p.ID, remaining))
	}
}

func TestEmailTrimmingOnLogin(t *testing.T) {
	fx := newFixture()
	p := fx.registerVerified(t, "n.fernando@cmb.lk")

	_, _, err := fx.svc.Login("  "+strings.ToUpper(p.Email)+"  ", "str0ng-password", token.DeviceInfo{})
	assert.NoError(t, err)
}
