package booking

import (
	"fmt"
	"time"

	"github.com/cloudnativeg23/stadium-matching/internal/models"
)

// Join status tags derived from order.status x member.status.
const (
	JoinStatusJoined    = "joined"
	JoinStatusCancelled = "cancelled"
	JoinStatusLeft      = "left"
)

// RentListEntry is one row of a renter's order history.
type RentListEntry struct {
	OrderID             uint      `json:"order_id"`
	Date                time.Time `json:"date"`
	StartTime           int       `json:"start_time"`
	EndTime             int       `json:"end_time"`
	Status              int       `json:"status"`
	IsMatching          bool      `json:"is_matching"`
	StadiumName         string    `json:"stadium_name"`
	VenueName           string    `json:"venue_name"`
	CourtName           string    `json:"court_name"`
	TeamID              uint      `json:"team_id"`
	CurrentMemberNumber int       `json:"current_member_number"`
	MaxNumberOfMember   int       `json:"max_number_of_member"`
}

// JoinListEntry is one row of a user's team-membership history.
type JoinListEntry struct {
	TeamID              uint         `json:"team_id"`
	OrderID             uint         `json:"order_id"`
	Date                time.Time    `json:"date"`
	StartTime           int          `json:"start_time"`
	EndTime             int          `json:"end_time"`
	StadiumName         string       `json:"stadium_name"`
	VenueName           string       `json:"venue_name"`
	CourtName           string       `json:"court_name"`
	CurrentMemberNumber int          `json:"current_member_number"`
	MaxNumberOfMember   int          `json:"max_number_of_member"`
	RenterName          string       `json:"renter_name"`
	RenterEmail         string       `json:"renter_email"`
	JoinStatus          string       `json:"join_status"`
	TeamMembers         []TeamMember `json:"team_members" gorm:"-"`
}

// TeamMember is a display record of one active teammate.
type TeamMember struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RentList returns the renter's orders with team and venue info, newest
// slot first.
func (r *bookingRepository) RentList(renterID uint) ([]RentListEntry, error) {
	var entries []RentListEntry
	err := r.db.Model(&models.Order{}).
		Select(`orders.id AS order_id, orders.date, orders.start_time, orders.end_time,
			orders.status, orders.is_matching,
			stadiums.name AS stadium_name, stadiums.venue_name,
			stadium_courts.name AS court_name,
			teams.id AS team_id, teams.current_member_number, teams.max_number_of_member`).
		Joins("JOIN stadium_courts ON stadium_courts.id = orders.stadium_court_id").
		Joins("JOIN stadiums ON stadiums.id = stadium_courts.stadium_id").
		Joins("JOIN teams ON teams.order_id = orders.id AND teams.deleted_at IS NULL").
		Where("orders.renter_id = ?", renterID).
		Order("orders.date DESC, orders.start_time DESC").
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("rent list for user %d: %w", renterID, err)
	}
	return entries, nil
}

// JoinList returns every team the user has ever joined, with a join_status
// derived from the order and membership rows, ordered by slot time.
func (r *bookingRepository) JoinList(userID uint) ([]JoinListEntry, error) {
	type joinRow struct {
		JoinListEntry
		OrderStatus  int
		MemberStatus int
	}
	var rows []joinRow
	err := r.db.Model(&models.TeamMember{}).
		Select(`teams.id AS team_id, orders.id AS order_id, orders.date, orders.start_time, orders.end_time,
			stadiums.name AS stadium_name, stadiums.venue_name,
			stadium_courts.name AS court_name,
			teams.current_member_number, teams.max_number_of_member,
			renter.name AS renter_name, renter.email AS renter_email,
			orders.status AS order_status, team_members.status AS member_status`).
		Joins("JOIN teams ON teams.id = team_members.team_id AND teams.deleted_at IS NULL").
		Joins("JOIN orders ON orders.id = teams.order_id").
		Joins("JOIN stadium_courts ON stadium_courts.id = orders.stadium_court_id").
		Joins("JOIN stadiums ON stadiums.id = stadium_courts.stadium_id").
		Joins("JOIN users AS renter ON renter.id = orders.renter_id").
		Where("team_members.user_id = ?", userID).
		Order("orders.date, orders.start_time").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("join list for user %d: %w", userID, err)
	}

	entries := make([]JoinListEntry, 0, len(rows))
	for _, row := range rows {
		entry := row.JoinListEntry
		switch {
		case row.OrderStatus == models.StatusCancelled:
			entry.JoinStatus = JoinStatusCancelled
		case row.MemberStatus == models.StatusCancelled:
			entry.JoinStatus = JoinStatusLeft
		default:
			entry.JoinStatus = JoinStatusJoined
		}

		var teammates []TeamMember
		err := r.db.Model(&models.TeamMember{}).
			Select("users.name, users.email").
			Joins("JOIN users ON users.id = team_members.user_id").
			Where("team_members.team_id = ? AND team_members.status = ? AND team_members.user_id != ?",
				row.TeamID, models.StatusActive, userID).
			Scan(&teammates).Error
		if err != nil {
			return nil, fmt.Errorf("teammates of team %d: %w", row.TeamID, err)
		}
		entry.TeamMembers = teammates
		entries = append(entries, entry)
	}
	return entries, nil
}
