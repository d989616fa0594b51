package models

import (
	"time"

	"gorm.io/gorm"
)

// Order / TeamMember status values. An order is either active or cancelled;
// the transition is one-directional.
const (
	StatusCancelled = 0
	StatusActive    = 1
)

// Order reserves one court for one hour by one renter. The partial unique
// index makes the database the authority on the "one active order per
// court-hour" invariant; the repository pre-checks are only there for
// friendlier error messages.
type Order struct {
	gorm.Model
	StadiumCourtID uint      `gorm:"not null;uniqueIndex:uniq_active_court_slot,where:status = 1" json:"stadium_court_id"`
	RenterID       uint      `gorm:"not null;index" json:"renter_id"`
	Date           time.Time `gorm:"not null;uniqueIndex:uniq_active_court_slot" json:"date"`
	StartTime      int       `gorm:"not null;uniqueIndex:uniq_active_court_slot" json:"start_time"`
	EndTime        int       `gorm:"not null" json:"end_time"`
	Status         int       `gorm:"not null" json:"status"`
	IsMatching     bool      `gorm:"not null" json:"is_matching"`

	Team *Team `gorm:"constraint:OnDelete:CASCADE" json:"team,omitempty"`
}

// Team is the group attached to exactly one order. CurrentMemberNumber
// counts the renter plus every active member.
type Team struct {
	gorm.Model
	OrderID             uint `gorm:"not null;uniqueIndex" json:"order_id"`
	MaxNumberOfMember   int  `gorm:"not null" json:"max_number_of_member"`
	CurrentMemberNumber int  `gorm:"not null" json:"current_member_number"`
	LevelRequirement    int  `gorm:"not null" json:"level_requirement"`

	Members []TeamMember `gorm:"constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

// TeamMember links a user to a team. A row with StatusCancelled records a
// past membership; rejoining flips it back instead of inserting a duplicate.
type TeamMember struct {
	gorm.Model
	TeamID uint `gorm:"not null;uniqueIndex:uniq_team_member" json:"team_id"`
	UserID uint `gorm:"not null;uniqueIndex:uniq_team_member" json:"user_id"`
	Status int  `gorm:"not null" json:"status"`
}
