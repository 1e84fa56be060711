package main

import (
	"log"

	"github.com/pitchside/uct-api/config"
	_ "github.com/pitchside/uct-api/docs"
	"github.com/pitchside/uct-api/internal/jobs"
	"github.com/pitchside/uct-api/internal/match"
	"github.com/pitchside/uct-api/internal/player"
	"github.com/pitchside/uct-api/internal/team"
	"github.com/pitchside/uct-api/internal/token"
	"github.com/pitchside/uct-api/internal/university"
	"github.com/pitchside/uct-api/routes"
)

// @title University Cricket Tournament API
// @version 1.0
// @description REST backend for the university cricket tournament 🏏
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()

	err := config.DB.AutoMigrate(
		&university.University{},
		&player.Player{},
		&team.Team{}, &team.TeamPlayer{},
		&token.TokenRecord{}, &token.OTPRecord{},
		&match.Match{}, &match.BallEvent{}, &match.PlayerMatchStat{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("AutoMigrate successful")

	tokenSvc := token.NewService(token.NewTokenRepository(config.DB), cfg)
	otpSvc := token.NewOTPService(token.NewOTPRepository(config.DB), cfg.OTP.MaxAttempts)

	scheduler := jobs.NewScheduler(tokenSvc, otpSvc)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	r := routes.SetupRoutes(config.DB, cfg)

	// Use port from loaded configuration
	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
