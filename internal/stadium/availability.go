package stadium

import (
	"fmt"
	"time"

	"github.com/cloudnativeg23/stadium-matching/internal/models"
)

// SlotStatus is one cell of the timetable.
type SlotStatus string

const (
	SlotDisabled  SlotStatus = "Disabled"
	SlotBooked    SlotStatus = "Booked"
	SlotAvailable SlotStatus = "Available"

	// Provider-facing statuses: occupancy only, joinability ignored.
	SlotHasOrder SlotStatus = "has_order"
	SlotNoOrder  SlotStatus = "no_order"
)

// availabilityHorizonDays is the fixed forward horizon of the timetable.
const availabilityHorizonDays = 7

// DayAvailability maps each in-window hour of one day to its status. Hours
// outside the weekday's open window are absent, not marked.
type DayAvailability struct {
	Date    string             `json:"date"`
	Weekday int                `json:"weekday"`
	Slots   map[int]SlotStatus `json:"slots"`
}

// Timetable is the per-day, per-hour availability of one stadium over the
// forward horizon.
type Timetable struct {
	StadiumID uint              `json:"stadium_id"`
	QueryDate string            `json:"query_date"`
	Days      []DayAvailability `json:"days"`
}

// bookedTeam is one booked court's open team at a given slot.
type bookedTeam struct {
	StadiumCourtID      uint
	Date                time.Time
	StartTime           int
	MaxNumberOfMember   int
	CurrentMemberNumber int
	LevelRequirement    int
}

// GetAvailability computes the renter-facing timetable. Slot resolution
// order: provider disable is terminal; otherwise occupancy across all
// enabled courts decides, with partial occupancy still Available when at
// least one booked court's team can absorb the requested headcount at a
// compatible level.
func (r *stadiumRepository) GetAvailability(stadiumID uint, queryDate time.Time, headcount int, level string) (*Timetable, error) {
	return r.buildTimetable(stadiumID, queryDate, func(disabled bool, booked []bookedTeam, enabledCourts int) SlotStatus {
		if disabled {
			return SlotDisabled
		}
		switch {
		case enabledCourts == 0:
			return SlotBooked
		case len(booked) == 0:
			return SlotAvailable
		case len(booked) >= enabledCourts:
			return SlotBooked
		default:
			// Partial occupancy: the slot stays Available only if at least
			// one booked court's open team can absorb the requested
			// headcount at a compatible level.
			for _, team := range booked {
				if models.LevelCodeContains(team.LevelRequirement, level) &&
					team.MaxNumberOfMember-team.CurrentMemberNumber >= headcount {
					return SlotAvailable
				}
			}
			return SlotBooked
		}
	})
}

// GetProviderAvailability answers the coarser provider question: does the
// slot carry any order at all. Headcount and level are irrelevant.
func (r *stadiumRepository) GetProviderAvailability(stadiumID uint, queryDate time.Time) (*Timetable, error) {
	return r.buildTimetable(stadiumID, queryDate, func(disabled bool, booked []bookedTeam, enabledCourts int) SlotStatus {
		if disabled {
			return SlotDisabled
		}
		if len(booked) > 0 {
			return SlotHasOrder
		}
		return SlotNoOrder
	})
}

func (r *stadiumRepository) buildTimetable(
	stadiumID uint,
	queryDate time.Time,
	classify func(disabled bool, booked []bookedTeam, enabledCourts int) SlotStatus,
) (*Timetable, error) {
	if _, err := r.GetStadiumByID(stadiumID); err != nil {
		return nil, err
	}
	windows, err := r.availableTimeByWeekday(stadiumID)
	if err != nil {
		return nil, err
	}
	courts, err := r.GetCourtsByStadiumID(stadiumID, true)
	if err != nil {
		return nil, err
	}

	from := models.NormalizeDate(queryDate)
	until := from.AddDate(0, 0, availabilityHorizonDays)

	courtIDs := make([]uint, len(courts))
	for i, court := range courts {
		courtIDs[i] = court.ID
	}

	// One round-trip each for bookings and disables over the whole horizon;
	// slot classification happens in memory.
	bookedBySlot := make(map[string][]bookedTeam)
	if len(courtIDs) > 0 {
		var booked []bookedTeam
		err = r.db.Model(&models.Order{}).
			Select(`orders.stadium_court_id, orders.date, orders.start_time,
				teams.max_number_of_member, teams.current_member_number, teams.level_requirement`).
			Joins("JOIN teams ON teams.order_id = orders.id AND teams.deleted_at IS NULL").
			Where("orders.stadium_court_id IN ?", courtIDs).
			Where("orders.status = ?", models.StatusActive).
			Where("orders.date >= ? AND orders.date < ?", from, until).
			Scan(&booked).Error
		if err != nil {
			return nil, fmt.Errorf("load bookings: %w", err)
		}
		for _, b := range booked {
			key := slotKey(b.Date, b.StartTime)
			bookedBySlot[key] = append(bookedBySlot[key], b)
		}
	}

	var disables []models.StadiumDisable
	err = r.db.Where("stadium_id = ? AND date >= ? AND date < ?", stadiumID, from, until).
		Find(&disables).Error
	if err != nil {
		return nil, fmt.Errorf("load disables: %w", err)
	}
	disabledSlots := make(map[string]bool, len(disables))
	for _, d := range disables {
		disabledSlots[slotKey(d.Date, d.StartTime)] = true
	}

	timetable := &Timetable{
		StadiumID: stadiumID,
		QueryDate: from.Format("2006-01-02"),
	}
	for offset := 0; offset < availabilityHorizonDays; offset++ {
		date := from.AddDate(0, 0, offset)
		day := DayAvailability{
			Date:    date.Format("2006-01-02"),
			Weekday: models.Weekday(date),
			Slots:   map[int]SlotStatus{},
		}
		if window, ok := windows[day.Weekday]; ok {
			for hour := window.StartTime; hour < window.EndTime; hour++ {
				key := slotKey(date, hour)
				day.Slots[hour] = classify(disabledSlots[key], bookedBySlot[key], len(courts))
			}
		}
		timetable.Days = append(timetable.Days, day)
	}
	return timetable, nil
}

func slotKey(date time.Time, hour int) string {
	return fmt.Sprintf("%s#%d", models.NormalizeDate(date).Format("2006-01-02"), hour)
}
