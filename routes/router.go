package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/cloudnativeg23/stadium-matching/config"
	"github.com/cloudnativeg23/stadium-matching/internal/booking"
	"github.com/cloudnativeg23/stadium-matching/internal/mailer"
	"github.com/cloudnativeg23/stadium-matching/internal/stadium"
	"github.com/cloudnativeg23/stadium-matching/internal/user"
)

// SetupRoutes wires every API group onto a gin engine.
func SetupRoutes(db *gorm.DB, notifier mailer.Notifier, scheduler booking.FinalizeScheduler, appConfig *config.Config) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default()) // allows all origins, GET/POST/PUT

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "stadium matching api"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api/v1")
	user.RegisterUserRoutes(api, db, appConfig)
	stadium.RegisterStadiumRoutes(api, db, notifier, appConfig)
	booking.RegisterBookingRoutes(api, db, notifier, scheduler, appConfig)

	return r
}
