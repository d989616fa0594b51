package stadium

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cloudnativeg23/stadium-matching/config"
	"github.com/cloudnativeg23/stadium-matching/internal/mailer"
	"github.com/cloudnativeg23/stadium-matching/internal/middleware"
)

// RegisterStadiumRoutes sets up all stadium related routes
func RegisterStadiumRoutes(router *gin.RouterGroup, db *gorm.DB, notifier mailer.Notifier, appConfig *config.Config) {
	repo := NewStadiumRepository(db)
	controller := NewStadiumController(repo, notifier, appConfig)

	stadiums := router.Group("/stadiums")
	{
		stadiums.GET("/timetable", controller.Timetable)
		stadiums.GET("/:stadium_id", controller.GetStadium)

		protected := stadiums.Group("")
		protected.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
		{
			protected.GET("/provider-timetable", controller.ProviderTimetable)
			protected.GET("/my", controller.MyStadiums)
			protected.POST("", controller.CreateStadium)
			protected.PUT("/:stadium_id", controller.UpdateStadium)
			protected.DELETE("/:stadium_id", controller.DeleteStadium)
			protected.POST("/:stadium_id/disable", controller.Disable)
			protected.POST("/:stadium_id/undisable", controller.Undisable)
		}
	}

	// Identity is optional here; the controller reads the bearer token itself.
	router.POST("/stadium-courts/rent-info", controller.RentInfo)
}
