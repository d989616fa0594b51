package booking

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cloudnativeg23/stadium-matching/internal/models"
)

// CancelledBooking carries everything the caller needs to notify the people
// affected by a cascade cancellation. It is collected inside the cancelling
// transaction; dispatch must wait until that transaction commits.
type CancelledBooking struct {
	OrderID      uint      `json:"order_id"`
	TeamID       uint      `json:"team_id"`
	CourtID      uint      `json:"court_id"`
	CourtName    string    `json:"court_name"`
	Date         time.Time `json:"date"`
	StartTime    int       `json:"start_time"`
	EndTime      int       `json:"end_time"`
	MemberEmails []string  `json:"member_emails"`
}

// CancelOrdersForCourt cancels every active order on the court, regardless of
// date. Used when a provider disables a court. A failing step aborts the
// whole cascade: partial cascades are worse than no cascade.
func CancelOrdersForCourt(tx *gorm.DB, courtID uint) ([]CancelledBooking, error) {
	var orders []models.Order
	if err := tx.Where("stadium_court_id = ? AND status = ?", courtID, models.StatusActive).
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("find active orders for court %d: %w", courtID, err)
	}
	return cancelAll(tx, orders)
}

// CancelOrdersExceedingCapacity cancels active orders on the stadium's
// still-enabled courts whose team capacity exceeds the new per-court cap.
// Orders with max_number_of_member <= cap are untouched.
func CancelOrdersExceedingCapacity(tx *gorm.DB, stadiumID uint, maxPeople int) ([]CancelledBooking, error) {
	var orders []models.Order
	err := tx.
		Joins("JOIN teams ON teams.order_id = orders.id AND teams.deleted_at IS NULL").
		Joins("JOIN stadium_courts ON stadium_courts.id = orders.stadium_court_id").
		Where("stadium_courts.stadium_id = ? AND stadium_courts.is_enabled = ?", stadiumID, true).
		Where("orders.status = ?", models.StatusActive).
		Where("teams.max_number_of_member > ?", maxPeople).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("find orders exceeding capacity for stadium %d: %w", stadiumID, err)
	}
	return cancelAll(tx, orders)
}

// CancelOrdersAtSlot cancels active orders on any court of the stadium that
// land exactly on the given hour slot. Used by the disable ledger when a
// newly disabled slot has bookings beneath it.
func CancelOrdersAtSlot(tx *gorm.DB, stadiumID uint, date time.Time, startTime int) ([]CancelledBooking, error) {
	var orders []models.Order
	err := tx.
		Joins("JOIN stadium_courts ON stadium_courts.id = orders.stadium_court_id").
		Where("stadium_courts.stadium_id = ?", stadiumID).
		Where("orders.status = ?", models.StatusActive).
		Where("orders.date = ? AND orders.start_time = ?", models.NormalizeDate(date), startTime).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("find active orders at slot: %w", err)
	}
	return cancelAll(tx, orders)
}

func cancelAll(tx *gorm.DB, orders []models.Order) ([]CancelledBooking, error) {
	cancelled := make([]CancelledBooking, 0, len(orders))
	for _, order := range orders {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.StatusActive).
			Update("status", models.StatusCancelled)
		if res.Error != nil {
			return nil, fmt.Errorf("cancel order %d: %w", order.ID, res.Error)
		}

		var team models.Team
		if err := tx.Where("order_id = ?", order.ID).First(&team).Error; err != nil {
			return nil, fmt.Errorf("resolve team of order %d: %w", order.ID, err)
		}
		emails, err := teamMemberEmails(tx, team.ID, order.RenterID)
		if err != nil {
			return nil, err
		}

		var court models.StadiumCourt
		if err := tx.First(&court, order.StadiumCourtID).Error; err != nil {
			return nil, fmt.Errorf("resolve court of order %d: %w", order.ID, err)
		}

		cancelled = append(cancelled, CancelledBooking{
			OrderID:      order.ID,
			TeamID:       team.ID,
			CourtID:      court.ID,
			CourtName:    court.Name,
			Date:         order.Date,
			StartTime:    order.StartTime,
			EndTime:      order.EndTime,
			MemberEmails: emails,
		})
	}
	return cancelled, nil
}

// teamMemberEmails resolves the renter plus every active member of the team.
func teamMemberEmails(tx *gorm.DB, teamID, renterID uint) ([]string, error) {
	var emails []string
	err := tx.Model(&models.TeamMember{}).
		Joins("JOIN users ON users.id = team_members.user_id").
		Where("team_members.team_id = ? AND team_members.status = ?", teamID, models.StatusActive).
		Pluck("users.email", &emails).Error
	if err != nil {
		return nil, fmt.Errorf("resolve member emails of team %d: %w", teamID, err)
	}

	var renter models.User
	if err := tx.First(&renter, renterID).Error; err != nil {
		return nil, fmt.Errorf("resolve renter %d: %w", renterID, err)
	}
	return append([]string{renter.Email}, emails...), nil
}
