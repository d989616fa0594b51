package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloudnativeg23/stadium-matching/config"
	"github.com/cloudnativeg23/stadium-matching/internal/apperr"
	"github.com/cloudnativeg23/stadium-matching/internal/middleware"
	"github.com/cloudnativeg23/stadium-matching/internal/models"
	"github.com/cloudnativeg23/stadium-matching/pkg/logger"
	"github.com/cloudnativeg23/stadium-matching/pkg/token"
	"github.com/cloudnativeg23/stadium-matching/pkg/utils"
)

// UserController handles registration, login and profile requests.
type UserController struct {
	repo      UserRepository
	appConfig *config.Config
}

// NewUserController creates a new user controller.
func NewUserController(repo UserRepository, appConfig *config.Config) *UserController {
	return &UserController{repo: repo, appConfig: appConfig}
}

type RegisterInput struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	IsProvider bool   `json:"is_provider"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param user body RegisterInput true "User information"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /users/register [post]
func (c *UserController) Register(ctx *gin.Context) {
	var input RegisterInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		utils.BadRequestJSON(ctx, err.Error())
		return
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		logger.L().Error("hash password", zap.Error(err))
		utils.InternalErrorJSON(ctx, err)
		return
	}

	user := &models.User{
		Name:       input.Name,
		Email:      input.Email,
		Password:   hashed,
		IsProvider: input.IsProvider,
		IsActive:   true,
	}
	if err := c.repo.Create(user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			utils.ConflictJSON(ctx, err.Error())
			return
		}
		logger.L().Error("create user", zap.Error(err))
		utils.InternalErrorJSON(ctx, err)
		return
	}

	utils.SuccessJSON(ctx, http.StatusCreated, "success", gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

// Login godoc
// @Summary Log in and receive an access token
// @Tags users
// @Accept json
// @Produce json
// @Param credentials body LoginInput true "Credentials"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /users/login [post]
func (c *UserController) Login(ctx *gin.Context) {
	var input LoginInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		utils.BadRequestJSON(ctx, err.Error())
		return
	}

	user, err := c.repo.GetByEmail(input.Email)
	if err != nil || !utils.CheckPassword(user.Password, input.Password) {
		utils.UnauthorizedJSON(ctx)
		return
	}

	accessToken, err := token.GenerateJWT(user.ID,
		c.appConfig.JWT.AccessTokenSecret, c.appConfig.JWT.AccessTokenExpiryMinutes)
	if err != nil {
		logger.L().Error("generate token", zap.Error(err))
		utils.InternalErrorJSON(ctx, err)
		return
	}

	utils.SuccessJSON(ctx, http.StatusOK, "success", gin.H{
		"access_token": accessToken,
		"user": gin.H{
			"id":          user.ID,
			"name":        user.Name,
			"email":       user.Email,
			"is_provider": user.IsProvider,
		},
	})
}

// Me godoc
// @Summary Current user profile
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /users/me [get]
// @Security Bearer
func (c *UserController) Me(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}
	user, err := c.repo.GetByID(userID)
	if err != nil {
		utils.NotFoundJSON(ctx, "user")
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "success", gin.H{
		"id":          user.ID,
		"name":        user.Name,
		"email":       user.Email,
		"picture":     user.Picture,
		"is_provider": user.IsProvider,
	})
}
