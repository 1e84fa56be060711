package university

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pitchside/uct-api/internal/middleware"
)

func RegisterUniversityRoutes(router *gin.RouterGroup, db *gorm.DB, auth gin.HandlerFunc) {
	repo := NewUniversityRepository(db)
	controller := NewUniversityController(repo)

	public := router.Group("/universities")
	{
		public.GET("", controller.GetUniversities)
		public.GET("/:id", controller.GetUniversity)
	}

	admin := router.Group("/admin/universities")
	admin.Use(auth, middleware.RequireRoles("admin"))
	{
		admin.POST("", controller.CreateUniversity)
		admin.PUT("/:id", controller.UpdateUniversity)
		admin.DELETE("/:id", controller.DeleteUniversity)
	}
}
