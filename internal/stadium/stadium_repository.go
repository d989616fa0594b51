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

// StadiumRepository defines all database operations for stadium management.
// Orders/teams are only ever touched through the booking package's cascade
// helpers, invoked inside this repository's transactions.
type StadiumRepository interface {
	CreateStadium(input CreateStadiumInput) (*models.Stadium, error)
	GetStadiumByID(id uint) (*models.Stadium, error)
	GetStadiumsByProviderID(providerID uint) ([]models.Stadium, error)
	UpdateStadium(id uint, input UpdateStadiumInput) (*UpdateStadiumResult, error)
	DeleteStadium(id uint) error

	GetCourtsByStadiumID(stadiumID uint, enabledOnly bool) ([]models.StadiumCourt, error)

	DisableRange(stadiumID uint, span DisableSpan) (*DisableResult, error)
	UndisableRange(stadiumID uint, span DisableSpan) (*UndisableResult, error)
	IsDisabled(stadiumID uint, date time.Time, startTime int) (bool, error)

	GetAvailability(stadiumID uint, queryDate time.Time, headcount int, level string) (*Timetable, error)
	GetProviderAvailability(stadiumID uint, queryDate time.Time) (*Timetable, error)
	GetRentInfo(query RentInfoQuery) ([]CourtRentInfo, error)
}

// CreateStadiumInput creates the stadium together with its courts and the
// weekday rows of one open window.
type CreateStadiumInput struct {
	Stadium    models.Stadium
	CourtNames []string
	Weekdays   []int
	StartTime  int
	EndTime    int
}

// UpdateStadiumInput mutates stadium metadata, the court set and the open
// window. Nil slices leave the corresponding part untouched.
type UpdateStadiumInput struct {
	Name              *string
	VenueName         *string
	Address           *string
	Description       *string
	MaxNumberOfPeople *int

	// Courts to soft-disable and courts to add.
	DisableCourtIDs []uint
	NewCourtNames   []string

	// Replace-all open window; applied when Weekdays is non-nil.
	Weekdays  []int
	StartTime int
	EndTime   int
}

// UpdateStadiumResult carries the updated stadium plus every booking the
// update cascade-cancelled. Notification dispatch must happen only after
// this result is returned, i.e. after the transaction committed.
type UpdateStadiumResult struct {
	Stadium   models.Stadium             `json:"stadium"`
	Cancelled []booking.CancelledBooking `json:"cancelled"`
}

type stadiumRepository struct {
	db *gorm.DB
}

// NewStadiumRepository creates a new stadium repository.
func NewStadiumRepository(db *gorm.DB) StadiumRepository {
	return &stadiumRepository{db: db}
}

// CreateStadium persists the stadium, its courts and one available-time row
// per weekday as a single transaction.
func (r *stadiumRepository) CreateStadium(input CreateStadiumInput) (*models.Stadium, error) {
	if input.EndTime <= input.StartTime {
		return nil, fmt.Errorf("%w: open window must end after it starts", apperr.ErrInvalidRange)
	}
	std := input.Stadium
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&std).Error; err != nil {
			return fmt.Errorf("create stadium: %w", err)
		}
		for _, name := range input.CourtNames {
			court := models.StadiumCourt{StadiumID: std.ID, Name: name, IsEnabled: true}
			if err := tx.Create(&court).Error; err != nil {
				return fmt.Errorf("create court: %w", err)
			}
		}
		return replaceAvailableTimes(tx, std.ID, input.Weekdays, input.StartTime, input.EndTime)
	})
	if err != nil {
		return nil, err
	}
	return r.GetStadiumByID(std.ID)
}

// GetStadiumByID retrieves a stadium with its courts and open window.
func (r *stadiumRepository) GetStadiumByID(id uint) (*models.Stadium, error) {
	var std models.Stadium
	err := r.db.Preload("Courts").Preload("AvailableTimes").First(&std, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: stadium %d", apperr.ErrNotFound, id)
		}
		return nil, err
	}
	return &std, nil
}

func (r *stadiumRepository) GetStadiumsByProviderID(providerID uint) ([]models.Stadium, error) {
	var stadiums []models.Stadium
	if err := r.db.Preload("Courts").Where("created_user_id = ?", providerID).Find(&stadiums).Error; err != nil {
		return nil, err
	}
	return stadiums, nil
}

// UpdateStadium applies metadata, court and window changes in one
// transaction, running the cascade canceller for disabled courts and for
// capacity reductions. The capacity cascade runs after court disables so a
// court disabled in the same update is not cancelled twice.
func (r *stadiumRepository) UpdateStadium(id uint, input UpdateStadiumInput) (*UpdateStadiumResult, error) {
	result := &UpdateStadiumResult{}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var std models.Stadium
		if err := tx.First(&std, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: stadium %d", apperr.ErrNotFound, id)
			}
			return err
		}

		if input.Name != nil {
			std.Name = *input.Name
		}
		if input.VenueName != nil {
			std.VenueName = *input.VenueName
		}
		if input.Address != nil {
			std.Address = *input.Address
		}
		if input.Description != nil {
			std.Description = *input.Description
		}

		for _, courtID := range input.DisableCourtIDs {
			var court models.StadiumCourt
			if err := tx.First(&court, courtID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: stadium court %d", apperr.ErrNotFound, courtID)
				}
				return err
			}
			if court.StadiumID != id {
				return fmt.Errorf("%w: court %d does not belong to stadium %d", apperr.ErrNotFound, courtID, id)
			}
			if !court.IsEnabled {
				continue // already disabled, nothing to cascade
			}
			if err := tx.Model(&court).Update("is_enabled", false).Error; err != nil {
				return fmt.Errorf("disable court %d: %w", courtID, err)
			}
			cancelled, err := booking.CancelOrdersForCourt(tx, courtID)
			if err != nil {
				return err
			}
			result.Cancelled = append(result.Cancelled, cancelled...)
		}

		for _, name := range input.NewCourtNames {
			court := models.StadiumCourt{StadiumID: id, Name: name, IsEnabled: true}
			if err := tx.Create(&court).Error; err != nil {
				return fmt.Errorf("create court: %w", err)
			}
		}

		if input.MaxNumberOfPeople != nil && *input.MaxNumberOfPeople != std.MaxNumberOfPeople {
			lowered := *input.MaxNumberOfPeople < std.MaxNumberOfPeople
			std.MaxNumberOfPeople = *input.MaxNumberOfPeople
			if lowered {
				cancelled, err := booking.CancelOrdersExceedingCapacity(tx, id, std.MaxNumberOfPeople)
				if err != nil {
					return err
				}
				result.Cancelled = append(result.Cancelled, cancelled...)
			}
		}

		if err := tx.Save(&std).Error; err != nil {
			return fmt.Errorf("update stadium: %w", err)
		}

		if input.Weekdays != nil {
			if input.EndTime <= input.StartTime {
				return fmt.Errorf("%w: open window must end after it starts", apperr.ErrInvalidRange)
			}
			if err := replaceAvailableTimes(tx, id, input.Weekdays, input.StartTime, input.EndTime); err != nil {
				return err
			}
		}

		result.Stadium = std
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteStadium removes the stadium and everything it owns. Ownership
// cascades are applied explicitly, child tables first, so the deletion order
// is the same on every database.
func (r *stadiumRepository) DeleteStadium(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var std models.Stadium
		if err := tx.First(&std, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: stadium %d", apperr.ErrNotFound, id)
			}
			return err
		}

		var courtIDs []uint
		if err := tx.Model(&models.StadiumCourt{}).Where("stadium_id = ?", id).
			Pluck("id", &courtIDs).Error; err != nil {
			return err
		}
		if len(courtIDs) > 0 {
			var orderIDs []uint
			if err := tx.Model(&models.Order{}).Where("stadium_court_id IN ?", courtIDs).
				Pluck("id", &orderIDs).Error; err != nil {
				return err
			}
			if len(orderIDs) > 0 {
				var teamIDs []uint
				if err := tx.Model(&models.Team{}).Where("order_id IN ?", orderIDs).
					Pluck("id", &teamIDs).Error; err != nil {
					return err
				}
				if len(teamIDs) > 0 {
					if err := tx.Where("team_id IN ?", teamIDs).Delete(&models.TeamMember{}).Error; err != nil {
						return err
					}
					if err := tx.Where("id IN ?", teamIDs).Delete(&models.Team{}).Error; err != nil {
						return err
					}
				}
				if err := tx.Where("id IN ?", orderIDs).Delete(&models.Order{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("stadium_id = ?", id).Delete(&models.StadiumCourt{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("stadium_id = ?", id).Delete(&models.StadiumAvailableTime{}).Error; err != nil {
			return err
		}
		if err := tx.Where("stadium_id = ?", id).Delete(&models.StadiumDisable{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Stadium{}, id).Error
	})
}

func (r *stadiumRepository) GetCourtsByStadiumID(stadiumID uint, enabledOnly bool) ([]models.StadiumCourt, error) {
	var courts []models.StadiumCourt
	query := r.db.Where("stadium_id = ?", stadiumID)
	if enabledOnly {
		query = query.Where("is_enabled = ?", true)
	}
	if err := query.Order("id").Find(&courts).Error; err != nil {
		return nil, err
	}
	return courts, nil
}

// availableTimeByWeekday loads the stadium's open window keyed by weekday.
func (r *stadiumRepository) availableTimeByWeekday(stadiumID uint) (map[int]models.StadiumAvailableTime, error) {
	var rows []models.StadiumAvailableTime
	if err := r.db.Where("stadium_id = ?", stadiumID).Find(&rows).Error; err != nil {
		return nil, err
	}
	windows := make(map[int]models.StadiumAvailableTime, len(rows))
	for _, row := range rows {
		windows[row.Weekday] = row
	}
	return windows, nil
}

// replaceAvailableTimes implements the replace-all-on-update semantics: all
// weekday rows share one start/end pair per update cycle.
func replaceAvailableTimes(tx *gorm.DB, stadiumID uint, weekdays []int, startTime, endTime int) error {
	if err := tx.Where("stadium_id = ?", stadiumID).Delete(&models.StadiumAvailableTime{}).Error; err != nil {
		return fmt.Errorf("clear available times: %w", err)
	}
	for _, weekday := range weekdays {
		if weekday < 1 || weekday > 7 {
			return fmt.Errorf("%w: weekday %d out of range", apperr.ErrInvalidRange, weekday)
		}
		row := models.StadiumAvailableTime{
			StadiumID: stadiumID,
			Weekday:   weekday,
			StartTime: startTime,
			EndTime:   endTime,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create available time: %w", err)
		}
	}
	return nil
}
