package team

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pitchside/uct-api/internal/middleware"
)

func RegisterTeamRoutes(router *gin.RouterGroup, db *gorm.DB, auth gin.HandlerFunc) {
	repo := NewTeamRepository(db)
	controller := NewTeamController(repo)

	public := router.Group("/teams")
	{
		public.GET("", controller.GetTeams)
		public.GET("/:id", controller.GetTeam)
	}

	budget := router.Group("/teams/:id")
	budget.Use(auth, middleware.RequireRoles("captain", "admin"))
	{
		budget.POST("/expenses", controller.AddExpense)
		budget.POST("/funds", controller.AddFunds)
	}
}
