package user

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cloudnativeg23/stadium-matching/config"
	"github.com/cloudnativeg23/stadium-matching/internal/middleware"
)

// RegisterUserRoutes wires the user endpoints under /users.
func RegisterUserRoutes(rg *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	controller := NewUserController(NewUserRepository(db), appConfig)

	users := rg.Group("/users")
	{
		users.POST("/register", controller.Register)
		users.POST("/login", controller.Login)

		authorized := users.Group("")
		authorized.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
		{
			authorized.GET("/me", controller.Me)
		}
	}
}
