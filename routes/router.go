package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/pitchside/uct-api/config"
	"github.com/pitchside/uct-api/internal/mailer"
	"github.com/pitchside/uct-api/internal/match"
	"github.com/pitchside/uct-api/internal/middleware"
	"github.com/pitchside/uct-api/internal/player"
	"github.com/pitchside/uct-api/internal/team"
	"github.com/pitchside/uct-api/internal/token"
	"github.com/pitchside/uct-api/internal/university"
)

func SetupRoutes(db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default()) // allows all origins, GET/POST/PUT

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	tokenSvc := token.NewService(token.NewTokenRepository(db), cfg)
	otpSvc := token.NewOTPService(token.NewOTPRepository(db), cfg.OTP.MaxAttempts)
	mail := mailer.New(cfg)

	authMW := middleware.Auth(tokenSvc, db)

	// API routes
	api := r.Group("/api")
	player.RegisterPlayerRoutes(api, db, cfg, tokenSvc, otpSvc, mail, authMW)
	university.RegisterUniversityRoutes(api, db, authMW)
	team.RegisterTeamRoutes(api, db, authMW)
	match.RegisterMatchRoutes(api, db, authMW)

	return r
}
