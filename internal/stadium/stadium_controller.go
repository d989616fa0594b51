package stadium

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloudnativeg23/stadium-matching/config"
	"github.com/cloudnativeg23/stadium-matching/internal/apperr"
	"github.com/cloudnativeg23/stadium-matching/internal/booking"
	"github.com/cloudnativeg23/stadium-matching/internal/mailer"
	"github.com/cloudnativeg23/stadium-matching/internal/middleware"
	"github.com/cloudnativeg23/stadium-matching/internal/models"
	"github.com/cloudnativeg23/stadium-matching/pkg/logger"
	"github.com/cloudnativeg23/stadium-matching/pkg/token"
	"github.com/cloudnativeg23/stadium-matching/pkg/utils"
)

const dateLayout = "2006-01-02"

// StadiumController handles stadium, timetable and disable requests.
type StadiumController struct {
	repo      StadiumRepository
	notifier  mailer.Notifier
	appConfig *config.Config
}

// NewStadiumController creates a new stadium controller.
func NewStadiumController(repo StadiumRepository, notifier mailer.Notifier, appConfig *config.Config) *StadiumController {
	return &StadiumController{repo: repo, notifier: notifier, appConfig: appConfig}
}

type CreateStadiumRequest struct {
	Name              string   `json:"name" binding:"required"`
	VenueName         string   `json:"venue_name" binding:"required"`
	Address           string   `json:"address"`
	Picture           string   `json:"picture"`
	Area              float64  `json:"area"`
	Description       string   `json:"description"`
	MaxNumberOfPeople int      `json:"max_number_of_people" binding:"required,gt=0"`
	CourtNames        []string `json:"court_names" binding:"required,min=1"`
	Weekdays          []int    `json:"weekdays" binding:"required,min=1"`
	StartTime         int      `json:"start_time" binding:"gte=0,lte=23"`
	EndTime           int      `json:"end_time" binding:"gte=1,lte=24"`
}

type UpdateStadiumRequest struct {
	Name              *string  `json:"name"`
	VenueName         *string  `json:"venue_name"`
	Address           *string  `json:"address"`
	Description       *string  `json:"description"`
	MaxNumberOfPeople *int     `json:"max_number_of_people"`
	DisableCourtIDs   []uint   `json:"disable_court_ids"`
	NewCourtNames     []string `json:"new_court_names"`
	Weekdays          []int    `json:"weekdays"`
	StartTime         int      `json:"start_time"`
	EndTime           int      `json:"end_time"`
}

type DisableRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	StartHour int    `json:"start_hour" binding:"gte=0,lte=23"`
	EndHour   int    `json:"end_hour" binding:"gte=1,lte=24"`
}

type RentInfoRequest struct {
	StadiumID        uint   `json:"stadium_id" binding:"required"`
	Date             string `json:"date" binding:"required"`
	StartTime        int    `json:"start_time" binding:"gte=0,lte=23"`
	Headcount        int    `json:"headcount" binding:"required,gt=0"`
	LevelRequirement string `json:"level_requirement" binding:"required"`
}

// Timetable godoc
// @Summary Seven-day availability timetable
// @Description Per-day, per-hour slot status for a stadium, considering disables, bookings and joinable teams
// @Tags stadiums
// @Produce json
// @Param stadium_id query int true "Stadium ID"
// @Param query_date query string true "Start date (YYYY-MM-DD)"
// @Param headcount query int true "Requested headcount"
// @Param level_requirement query string true "Level tag (easy|medium|hard)"
// @Success 200 {object} utils.SuccessResponse{data=Timetable}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /stadiums/timetable [get]
func (c *StadiumController) Timetable(ctx *gin.Context) {
	stadiumID, err := strconv.ParseUint(ctx.Query("stadium_id"), 10, 32)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid stadium_id")
		return
	}
	queryDate, err := time.Parse(dateLayout, ctx.Query("query_date"))
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid query_date, expected YYYY-MM-DD")
		return
	}
	headcount, err := strconv.Atoi(ctx.DefaultQuery("headcount", "1"))
	if err != nil || headcount <= 0 {
		utils.BadRequestJSON(ctx, "invalid headcount")
		return
	}
	level := strings.ToLower(ctx.DefaultQuery("level_requirement", models.LevelEasy))

	timetable, err := c.repo.GetAvailability(uint(stadiumID), queryDate, headcount, level)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "success", timetable)
}

// ProviderTimetable godoc
// @Summary Seven-day occupancy timetable for providers
// @Description Coarse has_order/no_order view, ignoring headcount and level
// @Tags stadiums
// @Produce json
// @Param stadium_id query int true "Stadium ID"
// @Param query_date query string true "Start date (YYYY-MM-DD)"
// @Success 200 {object} utils.SuccessResponse{data=Timetable}
// @Failure 404 {object} utils.ErrorResponse
// @Router /stadiums/provider-timetable [get]
// @Security Bearer
func (c *StadiumController) ProviderTimetable(ctx *gin.Context) {
	stadiumID, err := strconv.ParseUint(ctx.Query("stadium_id"), 10, 32)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid stadium_id")
		return
	}
	queryDate, err := time.Parse(dateLayout, ctx.Query("query_date"))
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid query_date, expected YYYY-MM-DD")
		return
	}
	timetable, err := c.repo.GetProviderAvailability(uint(stadiumID), queryDate)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "success", timetable)
}

// CreateStadium godoc
// @Summary Create a stadium with courts and open window
// @Tags stadiums
// @Accept json
// @Produce json
// @Param stadium body CreateStadiumRequest true "Stadium information"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /stadiums [post]
// @Security Bearer
func (c *StadiumController) CreateStadium(ctx *gin.Context) {
	var req CreateStadiumRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequestJSON(ctx, err.Error())
		return
	}
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	std, err := c.repo.CreateStadium(CreateStadiumInput{
		Stadium: models.Stadium{
			Name:              req.Name,
			VenueName:         req.VenueName,
			Address:           req.Address,
			Picture:           req.Picture,
			Area:              req.Area,
			Description:       req.Description,
			MaxNumberOfPeople: req.MaxNumberOfPeople,
			CreatedUserID:     userID,
		},
		CourtNames: req.CourtNames,
		Weekdays:   req.Weekdays,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusCreated, "success", std)
}

// GetStadium godoc
// @Summary Get stadium by ID
// @Tags stadiums
// @Produce json
// @Param stadium_id path int true "Stadium ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /stadiums/{stadium_id} [get]
func (c *StadiumController) GetStadium(ctx *gin.Context) {
	stadiumID, err := strconv.ParseUint(ctx.Param("stadium_id"), 10, 32)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid stadium ID")
		return
	}
	std, err := c.repo.GetStadiumByID(uint(stadiumID))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "success", std)
}

// MyStadiums godoc
// @Summary List stadiums owned by the current user
// @Tags stadiums
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /stadiums/my [get]
// @Security Bearer
func (c *StadiumController) MyStadiums(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}
	stadiums, err := c.repo.GetStadiumsByProviderID(userID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "success", stadiums)
}

// UpdateStadium godoc
// @Summary Update a stadium
// @Description Applies metadata, court and window changes; cascade-cancels bookings hit by court disables or capacity cuts and notifies their members after commit
// @Tags stadiums
// @Accept json
// @Produce json
// @Param stadium_id path int true "Stadium ID"
// @Param stadium body UpdateStadiumRequest true "Changes"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /stadiums/{stadium_id} [put]
// @Security Bearer
func (c *StadiumController) UpdateStadium(ctx *gin.Context) {
	stadiumID, err := strconv.ParseUint(ctx.Param("stadium_id"), 10, 32)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid stadium ID")
		return
	}
	var req UpdateStadiumRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequestJSON(ctx, err.Error())
		return
	}

	result, err := c.repo.UpdateStadium(uint(stadiumID), UpdateStadiumInput{
		Name:              req.Name,
		VenueName:         req.VenueName,
		Address:           req.Address,
		Description:       req.Description,
		MaxNumberOfPeople: req.MaxNumberOfPeople,
		DisableCourtIDs:   req.DisableCourtIDs,
		NewCourtNames:     req.NewCourtNames,
		Weekdays:          req.Weekdays,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
	})
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	// The update transaction has committed; only now is it safe to tell
	// people their booking is gone.
	c.notifyCancellations(ctx, result.Cancelled)
	utils.SuccessJSON(ctx, http.StatusOK, "success", result)
}

// DeleteStadium godoc
// @Summary Delete a stadium and everything it owns
// @Tags stadiums
// @Param stadium_id path int true "Stadium ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /stadiums/{stadium_id} [delete]
// @Security Bearer
func (c *StadiumController) DeleteStadium(ctx *gin.Context) {
	stadiumID, err := strconv.ParseUint(ctx.Param("stadium_id"), 10, 32)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid stadium ID")
		return
	}
	if err := c.repo.DeleteStadium(uint(stadiumID)); err != nil {
		c.respondError(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "success", nil)
}

// Disable godoc
// @Summary Disable a stadium-wide slot range
// @Description Expands the range to per-hour slots inside the open window; re-disabling is a no-op, bookings on newly disabled slots are cancelled and their members notified
// @Tags stadiums
// @Accept json
// @Produce json
// @Param stadium_id path int true "Stadium ID"
// @Param range body DisableRequest true "Slot range"
// @Success 200 {object} utils.SuccessResponse{data=DisableResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /stadiums/{stadium_id}/disable [post]
// @Security Bearer
func (c *StadiumController) Disable(ctx *gin.Context) {
	stadiumID, span, ok := c.bindSpan(ctx)
	if !ok {
		return
	}
	result, err := c.repo.DisableRange(stadiumID, span)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	c.notifyCancellations(ctx, result.Cancelled)
	utils.SuccessJSON(ctx, http.StatusOK, result.Message, result)
}

// Undisable godoc
// @Summary Re-enable a stadium-wide slot range
// @Tags stadiums
// @Accept json
// @Produce json
// @Param stadium_id path int true "Stadium ID"
// @Param range body DisableRequest true "Slot range"
// @Success 200 {object} utils.SuccessResponse{data=UndisableResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /stadiums/{stadium_id}/undisable [post]
// @Security Bearer
func (c *StadiumController) Undisable(ctx *gin.Context) {
	stadiumID, span, ok := c.bindSpan(ctx)
	if !ok {
		return
	}
	result, err := c.repo.UndisableRange(stadiumID, span)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "success", result)
}

// RentInfo godoc
// @Summary Court-level occupancy and join status for one slot
// @Tags stadiums
// @Accept json
// @Produce json
// @Param query body RentInfoRequest true "Slot query"
// @Success 200 {object} utils.SuccessResponse{data=[]CourtRentInfo}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /stadium-courts/rent-info [post]
func (c *StadiumController) RentInfo(ctx *gin.Context) {
	var req RentInfoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequestJSON(ctx, err.Error())
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid date, expected YYYY-MM-DD")
		return
	}

	infos, err := c.repo.GetRentInfo(RentInfoQuery{
		StadiumID:        req.StadiumID,
		Date:             date,
		StartTime:        req.StartTime,
		Headcount:        req.Headcount,
		LevelRequirement: strings.ToLower(req.LevelRequirement),
		UserID:           c.optionalUserID(ctx),
	})
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "success", infos)
}

func (c *StadiumController) bindSpan(ctx *gin.Context) (uint, DisableSpan, bool) {
	stadiumID, err := strconv.ParseUint(ctx.Param("stadium_id"), 10, 32)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid stadium ID")
		return 0, DisableSpan{}, false
	}
	var req DisableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequestJSON(ctx, err.Error())
		return 0, DisableSpan{}, false
	}
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid start_date, expected YYYY-MM-DD")
		return 0, DisableSpan{}, false
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid end_date, expected YYYY-MM-DD")
		return 0, DisableSpan{}, false
	}
	return uint(stadiumID), DisableSpan{
		StartDate: startDate,
		EndDate:   endDate,
		StartHour: req.StartHour,
		EndHour:   req.EndHour,
	}, true
}

// optionalUserID resolves the requester when a bearer token is present.
// Rent-info works anonymously; identity only refines the join status.
func (c *StadiumController) optionalUserID(ctx *gin.Context) uint {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return 0
	}
	claims, err := token.ValidateJWT(parts[1], c.appConfig.JWT.AccessTokenSecret)
	if err != nil {
		return 0
	}
	return claims.UserID
}

func (c *StadiumController) notifyCancellations(ctx *gin.Context, cancelled []booking.CancelledBooking) {
	for _, cb := range cancelled {
		body := fmt.Sprintf(
			"Your booking has been cancelled by the venue.<br><br>Booking info:<br>Date: %s<br>Time: %d:00-%d:00<br>Court: %s<br>",
			cb.Date.Format(dateLayout), cb.StartTime, cb.EndTime, cb.CourtName)
		mailer.NotifyAsync(ctx.Request.Context(), c.notifier, cb.MemberEmails,
			"Stadium Matching - Booking cancelled", body)
	}
}

func (c *StadiumController) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		ctx.JSON(http.StatusNotFound, utils.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrInvalidRange):
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		ctx.JSON(http.StatusConflict, utils.ErrorResponse{Error: err.Error()})
	default:
		logger.L().Error("stadium request failed", zap.Error(err))
		utils.InternalErrorJSON(ctx, err)
	}
}
