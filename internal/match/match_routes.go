package match

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pitchside/uct-api/internal/middleware"
	"github.com/pitchside/uct-api/internal/team"
)

// RegisterMatchRoutes sets up all match-related routes.
func RegisterMatchRoutes(router *gin.RouterGroup, db *gorm.DB, auth gin.HandlerFunc) {
	matchRepo := NewGormMatchRepository(db)
	teamRepo := team.NewTeamRepository(db)
	controller := NewMatchController(matchRepo, teamRepo)

	public := router.Group("/matches")
	{
		public.GET("", controller.GetMatches)
		public.GET("/:id", controller.GetMatch)
		public.GET("/:id/balls", controller.GetBalls)
		public.GET("/:id/stats", controller.GetStats)
	}

	scoring := router.Group("/matches")
	scoring.Use(auth, middleware.RequireRoles("captain", "admin"))
	{
		scoring.POST("", controller.CreateMatch)
		scoring.POST("/:id/toss", controller.RecordToss)
		scoring.POST("/:id/start", controller.StartMatch)
		scoring.POST("/:id/balls", controller.RecordBall)
		scoring.PUT("/:id/state", controller.UpdateState)
		scoring.POST("/:id/end-innings", controller.EndInnings)
		scoring.POST("/:id/finish", controller.FinishMatch)
		scoring.POST("/:id/cancel", controller.CancelMatch)
	}
}
