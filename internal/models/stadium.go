package models

import (
	"time"

	"gorm.io/gorm"
)

// Stadium is the top-level venue resource. MaxNumberOfPeople caps the team
// size on every court of the stadium; lowering it cascades into booking
// cancellations (see booking.CancelOrdersExceedingCapacity).
type Stadium struct {
	gorm.Model
	Name              string  `gorm:"not null" json:"name"`
	VenueName         string  `gorm:"not null" json:"venue_name"`
	Address           string  `json:"address"`
	Picture           string  `json:"picture"`
	Area              float64 `json:"area"`
	Description       string  `json:"description"`
	MaxNumberOfPeople int     `gorm:"not null" json:"max_number_of_people"`
	CreatedUserID     uint    `gorm:"not null;index" json:"created_user_id"`

	Courts         []StadiumCourt         `gorm:"constraint:OnDelete:CASCADE" json:"courts,omitempty"`
	AvailableTimes []StadiumAvailableTime `gorm:"constraint:OnDelete:CASCADE" json:"available_times,omitempty"`
}

// TableName pins the table to "stadiums"; the default pluralizer would
// produce "stadia", which every raw join in the repositories spells out as
// stadiums.
func (Stadium) TableName() string { return "stadiums" }

// StadiumCourt is the actual bookable unit within a slot. A disabled court
// accepts no new orders and its existing orders are cascade-cancelled.
type StadiumCourt struct {
	gorm.Model
	StadiumID uint   `gorm:"not null;index" json:"stadium_id"`
	Name      string `gorm:"not null" json:"name"`
	IsEnabled bool   `gorm:"not null;default:true" json:"is_enabled"`
}

// StadiumAvailableTime defines the recurring open window for one weekday
// (Monday=1 .. Sunday=7). Rows are replaced wholesale on stadium update.
type StadiumAvailableTime struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	StadiumID uint      `gorm:"not null;index" json:"stadium_id"`
	Weekday   int       `gorm:"not null" json:"weekday"`
	StartTime int       `gorm:"not null" json:"start_time"`
	EndTime   int       `gorm:"not null" json:"end_time"`
}

// StadiumDisable marks one stadium-wide hour slot as blocked by the provider.
// Row existence is the disabled predicate; rows are hard-deleted on undisable,
// so the struct deliberately carries no DeletedAt.
type StadiumDisable struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	StadiumID uint      `gorm:"not null;uniqueIndex:uniq_stadium_disable_slot" json:"stadium_id"`
	Date      time.Time `gorm:"not null;uniqueIndex:uniq_stadium_disable_slot" json:"date"`
	StartTime int       `gorm:"not null;uniqueIndex:uniq_stadium_disable_slot" json:"start_time"`
	EndTime   int       `gorm:"not null" json:"end_time"`
}

// NormalizeDate truncates t to its calendar day in UTC. Every date persisted
// or matched against the slot tables must pass through here so equality
// comparisons behave identically across drivers.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Weekday maps time.Weekday to the Monday=1..Sunday=7 convention used by
// StadiumAvailableTime rows.
func Weekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
