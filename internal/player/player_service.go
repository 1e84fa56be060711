package player

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pitchside/uct-api/config"
	"github.com/pitchside/uct-api/internal/mailer"
	"github.com/pitchside/uct-api/internal/team"
	"github.com/pitchside/uct-api/internal/token"
	"github.com/pitchside/uct-api/pkg/apperrors"
	"github.com/pitchside/uct-api/pkg/utils"
)

// ErrInvalidCredentials is the single message for every login failure so
// the API does not reveal whether an email is registered.
var ErrInvalidCredentials = apperrors.Unauthorized("invalid credentials")

// Service implements registration, authentication and profile management.
type Service struct {
	players PlayerRepository
	teams   team.TeamRepository
	tokens  *token.Service
	otps    *token.OTPService
	mail    mailer.Mailer
	cfg     *config.Config
}

func NewService(players PlayerRepository, teams team.TeamRepository, tokens *token.Service, otps *token.OTPService, mail mailer.Mailer, cfg *config.Config) *Service {
	return &Service{
		players: players,
		teams:   teams,
		tokens:  tokens,
		otps:    otps,
		mail:    mail,
		cfg:     cfg,
	}
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register creates an unverified account and mails a verification code.
func (s *Service) Register(in RegisterInput) (*Player, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.players.FindByEmail(email); err == nil {
		return nil, apperrors.Conflict("email is already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal(err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	p := &Player{
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		Email:              email,
		Password:           hash,
		Role:               RolePlayer,
		IsActive:           true,
		IsVerified:         false,
		RegistrationStatus: RegistrationPending,
	}
	if err := s.players.Create(p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("email is already registered")
		}
		return nil, apperrors.Internal(err)
	}

	s.issueAndMailVerification(p)
	return p, nil
}

func (s *Service) issueAndMailVerification(p *Player) {
	ttl := time.Duration(s.cfg.OTP.VerificationExpiryMinutes) * time.Minute
	rec, err := s.otps.Issue(p.ID, p.Email, token.OTPAccountVerification, ttl, s.cfg.OTP.Digits)
	if err != nil {
		log.Printf("issue verification otp for player %d: %v", p.ID, err)
		return
	}
	if err := s.mail.SendVerificationEmail(p.Email, p.FullName(), rec.Code); err != nil {
		log.Printf("send verification email to %s: %v", p.Email, err)
	}
}

// VerifyAccount consumes a verification code and marks the account
// verified.
func (s *Service) VerifyAccount(playerID uint, code string) (*Player, error) {
	p, err := s.players.FindByID(playerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("player not found")
		}
		return nil, apperrors.Internal(err)
	}
	if p.IsVerified {
		return p, nil
	}

	ok, err := s.otps.Verify(p.ID, code, token.OTPAccountVerification)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Validation("invalid or expired verification code")
	}

	p.IsVerified = true
	if err := s.players.Update(p); err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := s.mail.SendWelcomeEmail(p.Email, p.FullName()); err != nil {
		log.Printf("send welcome email to %s: %v", p.Email, err)
	}
	return p, nil
}

// ResendVerification issues a fresh verification code for an unverified
// account.
func (s *Service) ResendVerification(email string) error {
	p, err := s.players.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same outward behavior whether or not the email exists.
			log.Printf("resend verification for unknown email %s", email)
			return nil
		}
		return apperrors.Internal(err)
	}
	if p.IsVerified {
		return apperrors.Validation("account is already verified")
	}
	s.issueAndMailVerification(p)
	return nil
}

// Login authenticates and issues a token pair. Every failure mode answers
// with the same generic error; the real cause lands in the log only.
func (s *Service) Login(email, password string, device token.DeviceInfo) (*Player, *token.TokenPair, error) {
	p, err := s.players.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("login failed: unknown email %s", email)
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, apperrors.Internal(err)
	}
	if !p.IsActive {
		log.Printf("login failed: player %d is deactivated", p.ID)
		return nil, nil, ErrInvalidCredentials
	}
	if !p.IsVerified {
		log.Printf("login failed: player %d is not verified", p.ID)
		return nil, nil, ErrInvalidCredentials
	}
	if !utils.CheckPassword(p.Password, password) {
		log.Printf("login failed: wrong password for player %d", p.ID)
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssueTokenPair(p.ID, p.Email, p.Role, device)
	if err != nil {
		return nil, nil, err
	}
	return p, pair, nil
}

// RefreshTokens rotates a refresh token. The player is identified from the
// token record itself, so the call works without a live access token.
func (s *Service) RefreshTokens(refreshToken string, device token.DeviceInfo) (*token.TokenPair, error) {
	record, err := s.tokens.FindRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	p, err := s.players.FindByID(record.PlayerID)
	if err != nil {
		return nil, token.ErrInvalidToken
	}
	if !p.IsActive {
		return nil, token.ErrInvalidToken
	}
	return s.tokens.RotateRefresh(refreshToken, p.ID, p.Email, p.Role, device)
}

// Logout revokes every live session for the player.
func (s *Service) Logout(playerID uint) error {
	return s.tokens.RevokeAll(playerID)
}

// ForgotPassword issues a reset code when the email is known. It never
// reports whether the email exists; the controller answers 200 either way.
func (s *Service) ForgotPassword(email string) {
	p, err := s.players.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("password reset requested for unknown email %s", email)
		} else {
			log.Printf("password reset lookup for %s: %v", email, err)
		}
		return
	}

	ttl := time.Duration(s.cfg.OTP.PasswordResetExpiryMinutes) * time.Minute
	rec, err := s.otps.Issue(p.ID, p.Email, token.OTPPasswordReset, ttl, s.cfg.OTP.Digits)
	if err != nil {
		log.Printf("issue reset otp for player %d: %v", p.ID, err)
		return
	}
	resetURL := fmt.Sprintf("%s/reset-password/%d/%s", s.cfg.App.FrontendURL, p.ID, rec.Code)
	if err := s.mail.SendPasswordResetEmail(p.Email, p.FullName(), rec.Code, resetURL); err != nil {
		log.Printf("send reset email to %s: %v", p.Email, err)
	}
}

// ResetPassword consumes a reset code and stores a new password hash.
func (s *Service) ResetPassword(playerID uint, code, newPassword string) error {
	p, err := s.players.FindByID(playerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("player not found")
		}
		return apperrors.Internal(err)
	}

	ok, err := s.otps.Verify(p.ID, code, token.OTPPasswordReset)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.Validation("invalid or expired reset code")
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return apperrors.Internal(err)
	}
	p.Password = hash
	if err := s.players.Update(p); err != nil {
		return apperrors.Internal(err)
	}
	if err := s.mail.SendPasswordChangedEmail(p.Email, p.FullName()); err != nil {
		log.Printf("send password-changed email to %s: %v", p.Email, err)
	}
	return nil
}

// ChangePassword swaps the password for an authenticated player and kills
// any outstanding one-time codes.
func (s *Service) ChangePassword(playerID uint, current, newPassword string) error {
	p, err := s.players.FindByID(playerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("player not found")
		}
		return apperrors.Internal(err)
	}
	if !utils.CheckPassword(p.Password, current) {
		return apperrors.Validation("current password is incorrect")
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return apperrors.Internal(err)
	}
	p.Password = hash
	if err := s.players.Update(p); err != nil {
		return apperrors.Internal(err)
	}
	if err := s.otps.InvalidateAll(p.ID, p.Email); err != nil {
		log.Printf("invalidate otps for player %d: %v", p.ID, err)
	}
	if err := s.mail.SendPasswordChangedEmail(p.Email, p.FullName()); err != nil {
		log.Printf("send password-changed email to %s: %v", p.Email, err)
	}
	return nil
}

// GetProfile loads a player by ID.
func (s *Service) GetProfile(playerID uint) (*Player, error) {
	p, err := s.players.FindByID(playerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("player not found")
		}
		return nil, apperrors.Internal(err)
	}
	return p, nil
}

type ProfilePatch struct {
	FirstName    *string
	LastName     *string
	BattingStyle *string
	BowlingStyle *string
	Age          *int
	UniversityID *uint
	JerseyNumber *int
	Phone        *string
	ImageURL     *string
}

// UpdateProfile applies a partial update. Email, password and role are not
// patchable here. When the profile becomes complete the registration
// status flips to completed; it never flips back.
func (s *Service) UpdateProfile(playerID uint, patch ProfilePatch) (*Player, error) {
	p, err := s.GetProfile(playerID)
	if err != nil {
		return nil, err
	}

	if patch.FirstName != nil {
		p.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		p.LastName = *patch.LastName
	}
	if patch.BattingStyle != nil {
		p.BattingStyle = *patch.BattingStyle
	}
	if patch.BowlingStyle != nil {
		p.BowlingStyle = *patch.BowlingStyle
	}
	if patch.Age != nil {
		p.Age = patch.Age
	}
	if patch.UniversityID != nil {
		p.UniversityID = patch.UniversityID
	}
	if patch.JerseyNumber != nil {
		p.JerseyNumber = patch.JerseyNumber
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}

	if p.UniversityID != nil && p.JerseyNumber != nil {
		taken, err := s.players.JerseyTaken(*p.UniversityID, *p.JerseyNumber, p.ID)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if taken {
			return nil, apperrors.Conflict("jersey number is already taken at this university")
		}
	}

	if p.RegistrationStatus != RegistrationCompleted && p.ProfileComplete() {
		p.RegistrationStatus = RegistrationCompleted
	}

	if err := s.players.Update(p); err != nil {
		return nil, apperrors.Internal(err)
	}
	return p, nil
}

// CreateTeam registers a squad captained by the acting player. The player
// must have a completed profile and is promoted to captain.
func (s *Service) CreateTeam(playerID uint, name string, budget float64) (*team.Team, error) {
	p, err := s.GetProfile(playerID)
	if err != nil {
		return nil, err
	}
	if p.RegistrationStatus != RegistrationCompleted {
		return nil, apperrors.Validation("complete your profile before creating a team")
	}
	if p.UniversityID == nil {
		return nil, apperrors.Validation("a university must be on file to create a team")
	}

	t := &team.Team{
		Name:         name,
		CaptainID:    p.ID,
		UniversityID: *p.UniversityID,
		Budget:       budget,
	}
	if err := s.teams.CreateTeam(t); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("team name is already taken")
		}
		return nil, apperrors.Internal(err)
	}

	if p.Role == RolePlayer {
		p.Role = RoleCaptain
		if err := s.players.Update(p); err != nil {
			return nil, apperrors.Internal(err)
		}
	}
	if err := s.mail.SendTeamCreatedEmail(p.Email, p.FullName(), t.Name); err != nil {
		log.Printf("send team-created email to %s: %v", p.Email, err)
	}
	return t, nil
}

// JoinTeam adds the player to a team roster.
func (s *Service) JoinTeam(playerID, teamID uint, role string) (*team.TeamPlayer, error) {
	p, err := s.GetProfile(playerID)
	if err != nil {
		return nil, err
	}
	if p.RegistrationStatus != RegistrationCompleted {
		return nil, apperrors.Validation("complete your profile before joining a team")
	}
	if role == "" {
		role = team.RoleBatsman
	}
	if !team.ValidRosterRole(role) {
		return nil, apperrors.Validation("invalid roster role")
	}
	if _, err := s.teams.GetTeamByID(teamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("team not found")
		}
		return nil, apperrors.Internal(err)
	}

	tp := &team.TeamPlayer{TeamID: teamID, PlayerID: p.ID, Role: role}
	if err := s.teams.AddTeamPlayer(tp); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("player is already on this team")
		}
		return nil, apperrors.Internal(err)
	}
	return tp, nil
}

// Deactivate closes the account: codes invalidated, sessions revoked,
// active flag cleared.
func (s *Service) Deactivate(playerID uint) error {
	p, err := s.GetProfile(playerID)
	if err != nil {
		return err
	}
	if err := s.otps.InvalidateAll(p.ID, p.Email); err != nil {
		log.Printf("invalidate otps for player %d: %v", p.ID, err)
	}
	if err := s.tokens.RevokeAll(p.ID); err != nil {
		return err
	}
	p.IsActive = false
	if err := s.players.Update(p); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// GenerateLoginOTP issues a short-lived second-factor code and mails it.
func (s *Service) GenerateLoginOTP(playerID uint) error {
	p, err := s.GetProfile(playerID)
	if err != nil {
		return err
	}
	ttl := time.Duration(s.cfg.OTP.LoginExpiryMinutes) * time.Minute
	rec, err := s.otps.Issue(p.ID, p.Email, token.OTPLoginVerification, ttl, s.cfg.OTP.Digits)
	if err != nil {
		return err
	}
	if err := s.mail.SendLoginCodeEmail(p.Email, p.FullName(), rec.Code); err != nil {
		log.Printf("send login-code email to %s: %v", p.Email, err)
	}
	return nil
}

// VerifyLoginOTP checks a second-factor code.
func (s *Service) VerifyLoginOTP(playerID uint, code string) error {
	ok, err := s.otps.Verify(playerID, code, token.OTPLoginVerification)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.Validation("invalid or expired login code")
	}
	return nil
}
