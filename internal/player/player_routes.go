package player

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pitchside/uct-api/config"
	"github.com/pitchside/uct-api/internal/mailer"
	"github.com/pitchside/uct-api/internal/middleware"
	"github.com/pitchside/uct-api/internal/team"
	"github.com/pitchside/uct-api/internal/token"
)

func RegisterPlayerRoutes(router *gin.RouterGroup, db *gorm.DB, cfg *config.Config, tokens *token.Service, otps *token.OTPService, mail mailer.Mailer, auth gin.HandlerFunc) {
	playerRepo := NewPlayerRepository(db)
	teamRepo := team.NewTeamRepository(db)
	service := NewService(playerRepo, teamRepo, tokens, otps, mail, cfg)
	controller := NewPlayerController(service)

	public := router.Group("/players")
	{
		public.POST("/register", controller.Register)
		public.GET("/verify/:id/:otp", controller.VerifyAccount)
		public.POST("/resend-verification", controller.ResendVerification)
		public.POST("/login", controller.Login)
		public.POST("/forgot-password", controller.ForgotPassword)
		public.POST("/reset-password/:id/:otp", controller.ResetPassword)
	}

	authenticated := router.Group("/players")
	authenticated.Use(auth, middleware.RequireRoles(RolePlayer, RoleCaptain, RoleAdmin))
	{
		authenticated.GET("/profile", controller.GetProfile)
		authenticated.POST("/refresh-token", controller.RefreshToken)
		authenticated.PUT("/profile", controller.UpdateProfile)
		authenticated.POST("/change-password", controller.ChangePassword)
		authenticated.POST("/logout", controller.Logout)
		authenticated.POST("/deactivate", controller.Deactivate)
		authenticated.POST("/generate-otp", controller.GenerateOTP)
		authenticated.POST("/verify-otp", controller.VerifyOTP)
		authenticated.POST("/teams", controller.CreateTeam)
		authenticated.POST("/teams/join", controller.JoinTeam)
	}
}
