package stadium

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cloudnativeg23/stadium-matching/internal/apperr"
	"github.com/cloudnativeg23/stadium-matching/internal/booking"
	"github.com/cloudnativeg23/stadium-matching/internal/models"
)

// MsgAlreadyDisabled is returned when a disable span expands to in-window
// slots that are all disabled already. That case is a redundant success, not
// an error.
const (
	MsgDisableSuccess  = "success"
	MsgAlreadyDisabled = "Stadium is already disabled at the time."
)

// DisableSpan is an inclusive date range with hour bounds on the edge days:
// the span covers start_date start_hour up to end_date end_hour (exclusive).
// Days in between are covered across their whole open window.
type DisableSpan struct {
	StartDate time.Time
	EndDate   time.Time
	StartHour int
	EndHour   int
}

// Slot identifies one bookable hour of a stadium day.
type Slot struct {
	Date      time.Time `json:"date"`
	StartTime int       `json:"start_time"`
}

// DisableResult reports what a disable call actually did. Cancelled carries
// the bookings that sat on newly disabled slots; the caller notifies their
// members after the transaction commits.
type DisableResult struct {
	Created         []models.StadiumDisable    `json:"created"`
	AlreadyDisabled []Slot                     `json:"already_disabled"`
	Cancelled       []booking.CancelledBooking `json:"cancelled"`
	Message         string                     `json:"message"`
}

// UndisableResult reports removed and skipped slots of an undisable call.
type UndisableResult struct {
	Removed []Slot `json:"removed"`
	Skipped []Slot `json:"skipped"`
}

// expandSpan turns a span into discrete per-hour slots clipped to the
// stadium's weekday windows. Hours outside the open window are silently
// skipped; they never exist as bookable slots.
func expandSpan(span DisableSpan, windows map[int]models.StadiumAvailableTime) ([]Slot, error) {
	start := models.NormalizeDate(span.StartDate)
	end := models.NormalizeDate(span.EndDate)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date before start date", apperr.ErrInvalidRange)
	}
	if span.StartHour < 0 || span.StartHour > 23 || span.EndHour < 1 || span.EndHour > 24 {
		return nil, fmt.Errorf("%w: hours out of range", apperr.ErrInvalidRange)
	}
	if start.Equal(end) && span.EndHour <= span.StartHour {
		return nil, fmt.Errorf("%w: empty hour span", apperr.ErrInvalidRange)
	}

	var slots []Slot
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		window, ok := windows[models.Weekday(date)]
		if !ok {
			continue // stadium closed on this weekday
		}
		lo, hi := window.StartTime, window.EndTime
		if date.Equal(start) && span.StartHour > lo {
			lo = span.StartHour
		}
		if date.Equal(end) && span.EndHour < hi {
			hi = span.EndHour
		}
		for hour := lo; hour < hi; hour++ {
			slots = append(slots, Slot{Date: date, StartTime: hour})
		}
	}
	return slots, nil
}

// DisableRange expands the span into per-hour slots and records a
// StadiumDisable row for each slot not already disabled. Slots already
// disabled are skipped, not errors. Active bookings landing on newly
// disabled slots are cancelled in the same transaction.
func (r *stadiumRepository) DisableRange(stadiumID uint, span DisableSpan) (*DisableResult, error) {
	windows, err := r.availableTimeByWeekday(stadiumID)
	if err != nil {
		return nil, err
	}
	slots, err := expandSpan(span, windows)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: no slots inside the stadium's open window", apperr.ErrInvalidRange)
	}

	result := &DisableResult{Message: MsgDisableSuccess}
	err = r.db.Transaction(func(tx *gorm.DB) error {
		for _, slot := range slots {
			var existing models.StadiumDisable
			err := tx.Where("stadium_id = ? AND date = ? AND start_time = ?",
				stadiumID, slot.Date, slot.StartTime).First(&existing).Error
			switch {
			case err == nil:
				result.AlreadyDisabled = append(result.AlreadyDisabled, slot)
				continue
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}

			row := models.StadiumDisable{
				StadiumID: stadiumID,
				Date:      slot.Date,
				StartTime: slot.StartTime,
				EndTime:   slot.StartTime + 1,
			}
			if err := tx.Create(&row).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					result.AlreadyDisabled = append(result.AlreadyDisabled, slot)
					continue
				}
				return fmt.Errorf("create disable row: %w", err)
			}
			result.Created = append(result.Created, row)

			cancelled, err := booking.CancelOrdersAtSlot(tx, stadiumID, slot.Date, slot.StartTime)
			if err != nil {
				return err
			}
			result.Cancelled = append(result.Cancelled, cancelled...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(result.Created) == 0 {
		result.Message = MsgAlreadyDisabled
	}
	return result, nil
}

// UndisableRange removes the disable rows covered by the span. Slots without
// a matching row are skipped, mirroring disable's idempotence. A span that
// matches nothing at all is invalid.
func (r *stadiumRepository) UndisableRange(stadiumID uint, span DisableSpan) (*UndisableResult, error) {
	windows, err := r.availableTimeByWeekday(stadiumID)
	if err != nil {
		return nil, err
	}
	slots, err := expandSpan(span, windows)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: no slots inside the stadium's open window", apperr.ErrInvalidRange)
	}

	result := &UndisableResult{}
	err = r.db.Transaction(func(tx *gorm.DB) error {
		for _, slot := range slots {
			res := tx.Where("stadium_id = ? AND date = ? AND start_time = ?",
				stadiumID, slot.Date, slot.StartTime).Delete(&models.StadiumDisable{})
			if res.Error != nil {
				return fmt.Errorf("delete disable row: %w", res.Error)
			}
			if res.RowsAffected > 0 {
				result.Removed = append(result.Removed, slot)
			} else {
				result.Skipped = append(result.Skipped, slot)
			}
		}
		if len(result.Removed) == 0 {
			return fmt.Errorf("%w: stadium is not disabled at the time", apperr.ErrInvalidRange)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// IsDisabled is a bare existence check on the ledger. The caller is
// responsible for ensuring the hour lies inside the stadium's open window
// before interpreting the answer.
func (r *stadiumRepository) IsDisabled(stadiumID uint, date time.Time, startTime int) (bool, error) {
	var count int64
	err := r.db.Model(&models.StadiumDisable{}).
		Where("stadium_id = ? AND date = ? AND start_time = ?",
			stadiumID, models.NormalizeDate(date), startTime).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
