package matching

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cloudnativeg23/stadium-matching/internal/booking"
	"github.com/cloudnativeg23/stadium-matching/internal/mailer"
	"github.com/cloudnativeg23/stadium-matching/internal/models"
	"github.com/cloudnativeg23/stadium-matching/pkg/logger"
)

// Service owns the finalize-job queue. Every order rented with matching
// enabled gets exactly one one-shot job that closes its room at slot start.
type Service struct {
	scheduler gocron.Scheduler
	db        *gorm.DB
	repo      booking.BookingRepository
	client    *Client
	notifier  mailer.Notifier
}

// NewService builds the scheduler. client may be nil when no matching
// microservice is configured; rooms still close on time, they just skip the
// external grouping call.
func NewService(db *gorm.DB, repo booking.BookingRepository, client *Client, notifier mailer.Notifier) (*Service, error) {
	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					logger.L().Error("matching job panicked",
						zap.String("job_id", jobID.String()),
						zap.String("job_name", jobName),
						zap.Any("panic", recoverData))
				}),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Service{
		scheduler: sched,
		db:        db,
		repo:      repo,
		client:    client,
		notifier:  notifier,
	}, nil
}

// Start begins running queued finalize jobs.
func (s *Service) Start() {
	logger.L().Info("matching scheduler starting")
	s.scheduler.Start()
}

// Stop shuts the scheduler down and drops pending jobs. Pending rooms are
// picked up again by RescanPending on the next boot.
func (s *Service) Stop() error {
	logger.L().Info("matching scheduler stopping")
	return s.scheduler.Shutdown()
}

// ScheduleFinalize queues the one-shot finalize job for an order. A run time
// already in the past fires the job immediately.
func (s *Service) ScheduleFinalize(orderID uint, runAt time.Time) error {
	start := gocron.OneTimeJobStartDateTime(runAt)
	if !runAt.After(time.Now()) {
		start = gocron.OneTimeJobStartImmediately()
	}

	_, err := s.scheduler.NewJob(
		gocron.OneTimeJob(start),
		gocron.NewTask(func() { s.finalize(orderID) }),
		gocron.WithName(fmt.Sprintf("finalize-order-%d", orderID)),
	)
	if err != nil {
		return fmt.Errorf("queue finalize job for order %d: %w", orderID, err)
	}
	logger.L().Info("finalize job queued",
		zap.Uint("order_id", orderID), zap.Time("run_at", runAt))
	return nil
}

// ScheduleForOrder queues finalization at the order's slot start.
func (s *Service) ScheduleForOrder(order models.Order) error {
	if !order.IsMatching {
		return nil
	}
	runAt := SlotStart(order)
	return s.ScheduleFinalize(order.ID, runAt)
}

// RescanPending re-queues finalize jobs for every active matching order.
// Called once on boot; in-memory jobs do not survive restarts.
func (s *Service) RescanPending() error {
	var orders []models.Order
	err := s.db.
		Where("status = ? AND is_matching = ?", models.StatusActive, true).
		Find(&orders).Error
	if err != nil {
		return fmt.Errorf("load pending matching orders: %w", err)
	}
	for _, order := range orders {
		if err := s.ScheduleForOrder(order); err != nil {
			return err
		}
	}
	if len(orders) > 0 {
		logger.L().Info("pending matching orders re-queued", zap.Int("count", len(orders)))
	}
	return nil
}

// SlotStart converts an order's normalized date plus start hour into the
// moment its matching room closes.
func SlotStart(order models.Order) time.Time {
	day := models.NormalizeDate(order.Date)
	return day.Add(time.Duration(order.StartTime) * time.Hour)
}

// finalize closes the room, runs the external grouping when configured, and
// mails the final roster. Errors are logged, not retried; a room that failed
// to close stays open until the next boot rescan.
func (s *Service) finalize(orderID uint) {
	log := logger.L().With(zap.Uint("order_id", orderID))

	team, err := s.repo.FinalizeMatching(orderID)
	if err != nil {
		log.Error("finalize matching failed", zap.Error(err))
		return
	}
	log.Info("matching room closed", zap.Uint("team_id", team.ID),
		zap.Int("members", team.CurrentMemberNumber))

	if s.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if _, err := s.client.CreateMatch(ctx, strconv.FormatUint(uint64(orderID), 10), team.CurrentMemberNumber); err != nil {
			log.Error("matching service call failed", zap.Error(err))
		}
	}

	emails, err := s.repo.TeamMemberEmails(team.ID)
	if err != nil {
		log.Error("resolve member emails failed", zap.Error(err))
		return
	}
	summary, err := s.repo.GetOrderSummary(orderID)
	if err != nil {
		log.Error("load order summary failed", zap.Error(err))
		return
	}

	body := fmt.Sprintf(
		"Your team is set.<br><br>Booking info:<br>Date: %s<br>Time: %d:00-%d:00<br>Venue: %s / %s<br>Court: %s<br>Team size: %d<br>",
		summary.Date.Format("2006-01-02"), summary.StartTime, summary.EndTime,
		summary.StadiumName, summary.VenueName, summary.CourtName, team.CurrentMemberNumber)
	mailer.NotifyAsync(context.Background(), s.notifier, emails,
		"Stadium Matching - Your team is ready", body)
}
