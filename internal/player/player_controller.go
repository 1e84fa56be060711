package player

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pitchside/uct-api/internal/middleware"
	"github.com/pitchside/uct-api/internal/token"
	"github.com/pitchside/uct-api/pkg/apperrors"
	"github.com/pitchside/uct-api/pkg/responses"
)

// PlayerController handles registration, authentication and profile
// endpoints.
type PlayerController struct {
	service *Service
}

func NewPlayerController(service *Service) *PlayerController {
	return &PlayerController{service: service}
}

func deviceInfo(c *gin.Context) token.DeviceInfo {
	return token.DeviceInfo{
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		DeviceID:  c.GetHeader("X-Device-ID"),
	}
}

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,min=2,max=128"`
	LastName  string `json:"last_name" binding:"required,min=2,max=128"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type UpdateProfileRequest struct {
	FirstName    *string `json:"first_name" binding:"omitempty,min=2,max=128"`
	LastName     *string `json:"last_name" binding:"omitempty,min=2,max=128"`
	BattingStyle *string `json:"batting_style" binding:"omitempty,max=32"`
	BowlingStyle *string `json:"bowling_style" binding:"omitempty,max=64"`
	Age          *int    `json:"age" binding:"omitempty,min=16,max=60"`
	UniversityID *uint   `json:"university_id" binding:"omitempty"`
	JerseyNumber *int    `json:"jersey_number" binding:"omitempty,min=0,max=999"`
	Phone        *string `json:"phone" binding:"omitempty,max=32"`
	ImageURL     *string `json:"image_url" binding:"omitempty,url"`
}

type CreateTeamRequest struct {
	Name   string  `json:"name" binding:"required,min=3,max=256"`
	Budget float64 `json:"budget" binding:"omitempty,min=0"`
}

type JoinTeamRequest struct {
	TeamID uint   `json:"team_id" binding:"required"`
	Role   string `json:"role" binding:"omitempty,max=32"`
}

type VerifyOTPRequest struct {
	Code string `json:"code" binding:"required,min=4,max=16"`
}

// Register godoc
// @Summary Register a player account
// @Tags Players
// @Accept json
// @Produce json
// @Param player body RegisterRequest true "Registration payload"
// @Success 201 {object} responses.SuccessResponse{data=Player}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse "Email already registered"
// @Router /players/register [post]
func (pc *PlayerController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}
	p, err := pc.service.Register(RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendCreated(c, "Registration successful, check your email for the verification code", p)
}

// VerifyAccount godoc
// @Summary Verify a player account with an emailed code
// @Tags Players
// @Produce json
// @Param id path int true "Player ID"
// @Param otp path string true "Verification code"
// @Success 200 {object} responses.SuccessResponse{data=Player}
// @Failure 400 {object} responses.ErrorResponse
// @Router /players/verify/{id}/{otp} [get]
func (pc *PlayerController) VerifyAccount(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		responses.SendError(c, apperrors.Validation("invalid player id"))
		return
	}
	p, err := pc.service.VerifyAccount(uint(id), c.Param("otp"))
	if err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Account verified successfully", p)
}

// ResendVerification godoc
// @Summary Resend the account verification code
// @Tags Players
// @Accept json
// @Produce json
// @Param payload body EmailRequest true "Email"
// @Success 200 {object} responses.SuccessResponse
// @Router /players/resend-verification [post]
func (pc *PlayerController) ResendVerification(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}
	if err := pc.service.ResendVerification(req.Email); err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "If the account exists, a new code has been sent", nil)
}

// Login godoc
// @Summary Log in and receive an access/refresh token pair
// @Tags Players
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} responses.SuccessResponse
// @Failure 401 {object} responses.ErrorResponse "Invalid credentials"
// @Router /players/login [post]
func (pc *PlayerController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}
	p, pair, err := pc.service.Login(req.Email, req.Password, deviceInfo(c))
	if err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Login successful", gin.H{
		"player": p,
		"tokens": pair,
	})
}

// RefreshToken godoc
// @Summary Rotate the refresh token
// @Tags Players
// @Accept json
// @Produce json
// @Param payload body RefreshRequest true "Refresh token"
// @Success 200 {object} responses.SuccessResponse
// @Failure 401 {object} responses.ErrorResponse
// @Router /players/refresh-token [post]
// @Security BearerAuth
func (pc *PlayerController) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}
	pair, err := pc.service.RefreshTokens(req.RefreshToken, deviceInfo(c))
	if err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Tokens refreshed", pair)
}

// Logout godoc
// @Summary Log out of all sessions
// @Tags Players
// @Produce json
// @Success 200 {object} responses.SuccessResponse
// @Router /players/logout [post]
// @Security BearerAuth
func (pc *PlayerController) Logout(c *gin.Context) {
	playerID, err := middleware.PlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, apperrors.Unauthorized("authentication required"))
		return
	}
	if err := pc.service.Logout(playerID); err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Logged out", nil)
}

// ForgotPassword godoc
// @Summary Request a password reset code
// @Description Always answers 200 so the endpoint cannot be used to probe
// which emails are registered.
// @Tags Players
// @Accept json
// @Produce json
// @Param payload body EmailRequest true "Email"
// @Success 200 {object} responses.SuccessResponse
// @Router /players/forgot-password [post]
func (pc *PlayerController) ForgotPassword(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}
	pc.service.ForgotPassword(req.Email)
	responses.SendSuccess(c, http.StatusOK, "If the account exists, a reset code has been sent", nil)
}

// ResetPassword godoc
// @Summary Reset the password with an emailed code
// @Tags Players
// @Accept json
// @Produce json
// @Param id path int true "Player ID"
// @Param otp path string true "Reset code"
// @Param payload body ResetPasswordRequest true "New password"
// @Success 200 {object} responses.SuccessResponse
// @Failure 400 {object} responses.ErrorResponse
// @Router /players/reset-password/{id}/{otp} [post]
func (pc *PlayerController) ResetPassword(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		responses.SendError(c, apperrors.Validation("invalid player id"))
		return
	}
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}
	if err := pc.service.ResetPassword(uint(id), c.Param("otp"), req.Password); err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Password reset successfully", nil)
}

// ChangePassword godoc
// @Summary Change the password
// @Tags Players
// @Accept json
// @Produce json
// @Param payload body ChangePasswordRequest true "Passwords"
// @Success 200 {object} responses.SuccessResponse
// @Failure 400 {object} responses.ErrorResponse
// @Router /players/change-password [post]
// @Security BearerAuth
func (pc *PlayerController) ChangePassword(c *gin.Context) {
	playerID, err := middleware.PlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, apperrors.Unauthorized("authentication required"))
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}
	if err := pc.service.ChangePassword(playerID, req.CurrentPassword, req.NewPassword); err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Password changed successfully", nil)
}

// GetProfile godoc
// @Summary Get the authenticated player's profile
// @Tags Players
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=Player}
// @Router /players/profile [get]
// @Security BearerAuth
func (pc *PlayerController) GetProfile(c *gin.Context) {
	playerID, err := middleware.PlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, apperrors.Unauthorized("authentication required"))
		return
	}
	p, err := pc.service.GetProfile(playerID)
	if err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", p)
}

// UpdateProfile godoc
// @Summary Update the authenticated player's profile
// @Description Completing age, university, jersey number and phone moves
// the registration status to completed.
// @Tags Players
// @Accept json
// @Produce json
// @Param patch body UpdateProfileRequest true "Fields to update"
// @Success 200 {object} responses.SuccessResponse{data=Player}
// @Failure 409 {object} responses.ErrorResponse "Jersey number taken"
// @Router /players/profile [put]
// @Security BearerAuth
func (pc *PlayerController) UpdateProfile(c *gin.Context) {
	playerID, err := middleware.PlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, apperrors.Unauthorized("authentication required"))
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}
	p, err := pc.service.UpdateProfile(playerID, ProfilePatch{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		BattingStyle: req.BattingStyle,
		BowlingStyle: req.BowlingStyle,
		Age:          req.Age,
		UniversityID: req.UniversityID,
		JerseyNumber: req.JerseyNumber,
		Phone:        req.Phone,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Profile updated successfully", p)
}

// CreateTeam godoc
// @Summary Create a team captained by the authenticated player
// @Tags Players
// @Accept json
// @Produce json
// @Param team body CreateTeamRequest true "Team payload"
// @Success 201 {object} responses.SuccessResponse
// @Failure 400 {object} responses.ErrorResponse "Profile incomplete"
// @Failure 409 {object} responses.ErrorResponse "Team name taken"
// @Router /players/teams [post]
// @Security BearerAuth
func (pc *PlayerController) CreateTeam(c *gin.Context) {
	playerID, err := middleware.PlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, apperrors.Unauthorized("authentication required"))
		return
	}
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}
	t, err := pc.service.CreateTeam(playerID, req.Name, req.Budget)
	if err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendCreated(c, "Team created successfully", t)
}

// JoinTeam godoc
// @Summary Join a team roster
// @Tags Players
// @Accept json
// @Produce json
// @Param payload body JoinTeamRequest true "Team and roster role"
// @Success 201 {object} responses.SuccessResponse
// @Failure 409 {object} responses.ErrorResponse "Already on the team"
// @Router /players/teams/join [post]
// @Security BearerAuth
func (pc *PlayerController) JoinTeam(c *gin.Context) {
	playerID, err := middleware.PlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, apperrors.Unauthorized("authentication required"))
		return
	}
	var req JoinTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}
	tp, err := pc.service.JoinTeam(playerID, req.TeamID, req.Role)
	if err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendCreated(c, "Joined team successfully", tp)
}

// Deactivate godoc
// @Summary Deactivate the authenticated player's account
// @Tags Players
// @Produce json
// @Success 200 {object} responses.SuccessResponse
// @Router /players/deactivate [post]
// @Security BearerAuth
func (pc *PlayerController) Deactivate(c *gin.Context) {
	playerID, err := middleware.PlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, apperrors.Unauthorized("authentication required"))
		return
	}
	if err := pc.service.Deactivate(playerID); err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Account deactivated", nil)
}

// GenerateOTP godoc
// @Summary Email a second-factor login code
// @Tags Players
// @Produce json
// @Success 200 {object} responses.SuccessResponse
// @Router /players/generate-otp [post]
// @Security BearerAuth
func (pc *PlayerController) GenerateOTP(c *gin.Context) {
	playerID, err := middleware.PlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, apperrors.Unauthorized("authentication required"))
		return
	}
	if err := pc.service.GenerateLoginOTP(playerID); err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Login code sent", nil)
}

// VerifyOTP godoc
// @Summary Verify a second-factor login code
// @Tags Players
// @Accept json
// @Produce json
// @Param payload body VerifyOTPRequest true "Code"
// @Success 200 {object} responses.SuccessResponse
// @Failure 400 {object} responses.ErrorResponse
// @Router /players/verify-otp [post]
// @Security BearerAuth
func (pc *PlayerController) VerifyOTP(c *gin.Context) {
	playerID, err := middleware.PlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, apperrors.Unauthorized("authentication required"))
		return
	}
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}
	if err := pc.service.VerifyLoginOTP(playerID, req.Code); err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Code verified", nil)
}
