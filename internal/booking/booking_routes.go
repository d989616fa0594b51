package booking

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cloudnativeg23/stadium-matching/config"
	"github.com/cloudnativeg23/stadium-matching/internal/mailer"
	"github.com/cloudnativeg23/stadium-matching/internal/middleware"
)

// RegisterBookingRoutes sets up all order and team related routes.
func RegisterBookingRoutes(router *gin.RouterGroup, db *gorm.DB, notifier mailer.Notifier, scheduler FinalizeScheduler, appConfig *config.Config) {
	repo := NewBookingRepository(db)
	controller := NewBookingController(repo, notifier, scheduler)

	auth := middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db)

	orders := router.Group("/orders")
	orders.Use(auth)
	{
		orders.POST("/rent", controller.Rent)
		orders.DELETE("/:order_id", controller.CancelOrder)
		orders.GET("/my-rent-list", controller.MyRentList)
		orders.GET("/my-join-list", controller.MyJoinList)
	}

	teams := router.Group("/teams")
	teams.Use(auth)
	{
		teams.POST("/:team_id/join", controller.Join)
		teams.POST("/:team_id/leave", controller.Leave)
	}
}
