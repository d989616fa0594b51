package booking

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloudnativeg23/stadium-matching/internal/apperr"
	"github.com/cloudnativeg23/stadium-matching/internal/mailer"
	"github.com/cloudnativeg23/stadium-matching/internal/middleware"
	"github.com/cloudnativeg23/stadium-matching/pkg/logger"
	"github.com/cloudnativeg23/stadium-matching/pkg/utils"
)

const dateLayout = "2006-01-02"

// FinalizeScheduler queues the matching-room close job for a freshly rented
// order. Satisfied by matching.Service; nil disables scheduling.
type FinalizeScheduler interface {
	ScheduleFinalize(orderID uint, runAt time.Time) error
}

// BookingController handles rent, join, leave and order cancellation.
type BookingController struct {
	repo      BookingRepository
	notifier  mailer.Notifier
	scheduler FinalizeScheduler
}

// NewBookingController creates a new booking controller.
func NewBookingController(repo BookingRepository, notifier mailer.Notifier, scheduler FinalizeScheduler) *BookingController {
	return &BookingController{repo: repo, notifier: notifier, scheduler: scheduler}
}

type RentOrderRequest struct {
	StadiumCourtID    uint     `json:"stadium_court_id" binding:"required"`
	Date              string   `json:"date" binding:"required"`
	StartTime         int      `json:"start_time" binding:"gte=0,lte=23"`
	EndTime           int      `json:"end_time" binding:"gte=1,lte=24"`
	IsMatching        bool     `json:"is_matching"`
	MaxNumberOfMember int      `json:"max_number_of_member" binding:"required,gt=0"`
	LevelRequirement  []string `json:"level_requirement" binding:"required,min=1"`
	TeamMemberEmails  []string `json:"team_member_emails"`
}

type JoinTeamRequest struct {
	LevelRequirement string   `json:"level_requirement"`
	TeamMemberEmails []string `json:"team_member_emails"`
}

// Rent godoc
// @Summary Rent a court slot
// @Description Creates the order, its team and invited members atomically; an unknown invite email fails the whole request
// @Tags bookings
// @Accept json
// @Produce json
// @Param order body RentOrderRequest true "Booking information"
// @Success 201 {object} utils.SuccessResponse{data=RentResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /orders/rent [post]
// @Security Bearer
func (c *BookingController) Rent(ctx *gin.Context) {
	var req RentOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequestJSON(ctx, err.Error())
		return
	}
	if req.EndTime != req.StartTime+1 {
		utils.BadRequestJSON(ctx, "bookings cover exactly one hour")
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid date, expected YYYY-MM-DD")
		return
	}
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	levels := make([]string, 0, len(req.LevelRequirement))
	for _, lvl := range req.LevelRequirement {
		levels = append(levels, strings.ToLower(lvl))
	}

	result, err := c.repo.Rent(RentRequest{
		StadiumCourtID:    req.StadiumCourtID,
		RenterID:          userID,
		Date:              date,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		IsMatching:        req.IsMatching,
		MaxNumberOfMember: req.MaxNumberOfMember,
		LevelRequirement:  levels,
		TeamMemberEmails:  req.TeamMemberEmails,
	})
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	// Committed. Side effects only from here on.
	if c.scheduler != nil && result.Order.IsMatching {
		day := result.Order.Date
		runAt := day.Add(time.Duration(result.Order.StartTime) * time.Hour)
		if err := c.scheduler.ScheduleFinalize(result.Order.ID, runAt); err != nil {
			logger.L().Error("schedule finalize failed",
				zap.Uint("order_id", result.Order.ID), zap.Error(err))
		}
	}
	if summary, err := c.repo.GetOrderSummary(result.Order.ID); err == nil {
		recipients := append([]string{summary.RenterEmail}, result.MemberEmails...)
		mailer.NotifyAsync(ctx.Request.Context(), c.notifier, recipients,
			"Stadium Matching - Booking confirmed", summaryBody(summary))
	} else {
		logger.L().Error("load order summary failed",
			zap.Uint("order_id", result.Order.ID), zap.Error(err))
	}

	utils.SuccessJSON(ctx, http.StatusCreated, "success", result)
}

// Join godoc
// @Summary Join an existing team
// @Description Re-validates the team's level requirement and remaining capacity; companions are resolved by email
// @Tags bookings
// @Accept json
// @Produce json
// @Param team_id path int true "Team ID"
// @Param join body JoinTeamRequest true "Join information"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /teams/{team_id}/join [post]
// @Security Bearer
func (c *BookingController) Join(ctx *gin.Context) {
	teamID, err := strconv.ParseUint(ctx.Param("team_id"), 10, 32)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid team ID")
		return
	}
	var req JoinTeamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequestJSON(ctx, err.Error())
		return
	}
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	team, err := c.repo.Join(JoinRequest{
		TeamID:           uint(teamID),
		UserID:           userID,
		LevelRequirement: strings.ToLower(req.LevelRequirement),
		TeamMemberEmails: req.TeamMemberEmails,
	})
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	// The roster emails come from the committed membership rows, so the
	// joiner and their companions are already included alongside the renter.
	if summary, err := c.repo.GetOrderSummary(team.OrderID); err == nil {
		recipients, err := c.repo.TeamMemberEmails(team.ID)
		if err != nil {
			logger.L().Error("resolve team roster failed",
				zap.Uint("team_id", team.ID), zap.Error(err))
		} else {
			mailer.NotifyAsync(ctx.Request.Context(), c.notifier, recipients,
				"Stadium Matching - Team roster updated", summaryBody(summary))
		}
	} else {
		logger.L().Error("load order summary failed",
			zap.Uint("order_id", team.OrderID), zap.Error(err))
	}

	utils.SuccessJSON(ctx, http.StatusOK, "success", team)
}

// Leave godoc
// @Summary Leave a team
// @Tags bookings
// @Produce json
// @Param team_id path int true "Team ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /teams/{team_id}/leave [post]
// @Security Bearer
func (c *BookingController) Leave(ctx *gin.Context) {
	teamID, err := strconv.ParseUint(ctx.Param("team_id"), 10, 32)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid team ID")
		return
	}
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}
	if err := c.repo.Leave(uint(teamID), userID); err != nil {
		c.respondError(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "success", nil)
}

// CancelOrder godoc
// @Summary Cancel an order
// @Description Only the renter can cancel; team members are notified after the cancellation commits
// @Tags bookings
// @Produce json
// @Param order_id path int true "Order ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /orders/{order_id} [delete]
// @Security Bearer
func (c *BookingController) CancelOrder(ctx *gin.Context) {
	orderID, err := strconv.ParseUint(ctx.Param("order_id"), 10, 32)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid order ID")
		return
	}
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	// Snapshot the roster before the cancel; afterwards the membership is
	// still readable but the intent is clearer this way.
	var recipients []string
	if team, err := c.repo.GetTeamByOrderID(uint(orderID)); err == nil {
		if emails, err := c.repo.TeamMemberEmails(team.ID); err == nil {
			recipients = emails
		}
	}

	if err := c.repo.CancelOrder(uint(orderID), userID); err != nil {
		c.respondError(ctx, err)
		return
	}

	if len(recipients) > 0 {
		if summary, err := c.repo.GetOrderSummary(uint(orderID)); err == nil {
			mailer.NotifyAsync(ctx.Request.Context(), c.notifier, recipients,
				"Stadium Matching - Booking cancelled", summaryBody(summary))
		} else {
			logger.L().Error("load order summary failed",
				zap.Uint64("order_id", orderID), zap.Error(err))
		}
	}

	utils.SuccessJSON(ctx, http.StatusOK, "success", nil)
}

// MyRentList godoc
// @Summary Bookings rented by the current user
// @Tags bookings
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]RentListEntry}
// @Failure 401 {object} utils.ErrorResponse
// @Router /orders/my-rent-list [get]
// @Security Bearer
func (c *BookingController) MyRentList(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}
	entries, err := c.repo.RentList(userID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "success", entries)
}

// MyJoinList godoc
// @Summary Teams the current user has joined
// @Tags bookings
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]JoinListEntry}
// @Failure 401 {object} utils.ErrorResponse
// @Router /orders/my-join-list [get]
// @Security Bearer
func (c *BookingController) MyJoinList(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}
	entries, err := c.repo.JoinList(userID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "success", entries)
}

func summaryBody(s *RentedSummary) string {
	return fmt.Sprintf(
		"Booking info:<br>Date: %s<br>Time: %d:00-%d:00<br>Venue: %s / %s<br>Court: %s<br>Renter: %s<br>",
		s.Date.Format(dateLayout), s.StartTime, s.EndTime,
		s.StadiumName, s.VenueName, s.CourtName, s.RenterName)
}

func (c *BookingController) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		ctx.JSON(http.StatusNotFound, utils.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrUnresolvedMember):
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrInvalidRange):
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		ctx.JSON(http.StatusConflict, utils.ErrorResponse{Error: err.Error()})
	default:
		logger.L().Error("booking request failed", zap.Error(err))
		utils.InternalErrorJSON(ctx, err)
	}
}
