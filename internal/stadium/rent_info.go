package stadium

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cloudnativeg23/stadium-matching/internal/models"
)

// Court-level join statuses for the rent-info view.
const (
	CourtRentable   = "rentable"    // court is free at the slot
	CourtJoinable   = "joinable"    // court is booked, team accepts the requester
	CourtFull       = "full"        // team is at capacity
	CourtUnjoinable = "cannot_join" // see StatusDescription
)

// RentInfoQuery asks, court by court, who holds a slot and whether the
// requester's party could join. UserID 0 means an anonymous requester.
type RentInfoQuery struct {
	StadiumID        uint
	Date             time.Time
	StartTime        int
	Headcount        int
	LevelRequirement string
	UserID           uint
}

// CourtRentInfo is the per-court answer. Renter/team fields are zero when
// the court is free.
type CourtRentInfo struct {
	StadiumCourtID      uint     `json:"stadium_court_id"`
	Name                string   `json:"name"`
	RenterID            uint     `json:"renter_id,omitempty"`
	RenterName          string   `json:"renter_name,omitempty"`
	TeamID              uint     `json:"team_id,omitempty"`
	CurrentMemberNumber int      `json:"current_member_number,omitempty"`
	MaxNumberOfMember   int      `json:"max_number_of_member,omitempty"`
	LevelRequirement    []string `json:"level_requirement,omitempty"`
	IsMatching          bool     `json:"is_matching,omitempty"`
	Status              string   `json:"status"`
	StatusDescription   string   `json:"status_description,omitempty"`
}

type rentInfoRow struct {
	RenterID            uint
	RenterName          string
	TeamID              uint
	CurrentMemberNumber int
	MaxNumberOfMember   int
	LevelRequirement    int
	IsMatching          bool
}

// GetRentInfo reports the slot's occupancy court by court. The timetable has
// already filtered disable/window state upstream, so only courts and their
// orders matter here.
func (r *stadiumRepository) GetRentInfo(query RentInfoQuery) ([]CourtRentInfo, error) {
	std, err := r.GetStadiumByID(query.StadiumID)
	if err != nil {
		return nil, err
	}
	courts, err := r.GetCourtsByStadiumID(query.StadiumID, true)
	if err != nil {
		return nil, err
	}
	date := models.NormalizeDate(query.Date)

	infos := make([]CourtRentInfo, 0, len(courts))
	for _, court := range courts {
		var row rentInfoRow
		err := r.db.Model(&models.Order{}).
			Select(`orders.renter_id, users.name AS renter_name, orders.is_matching,
				teams.id AS team_id, teams.current_member_number,
				teams.max_number_of_member, teams.level_requirement`).
			Joins("JOIN teams ON teams.order_id = orders.id AND teams.deleted_at IS NULL").
			Joins("JOIN users ON users.id = orders.renter_id").
			Where("orders.stadium_court_id = ?", court.ID).
			Where("orders.date = ? AND orders.start_time = ?", date, query.StartTime).
			Where("orders.status = ?", models.StatusActive).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			info := CourtRentInfo{
				StadiumCourtID: court.ID,
				Name:           court.Name,
				Status:         CourtRentable,
			}
			if query.Headcount > std.MaxNumberOfPeople {
				info.Status = CourtUnjoinable
				info.StatusDescription = "headcount exceeds stadium capacity"
			}
			infos = append(infos, info)
			continue
		}
		if err != nil {
			return nil, err
		}

		info := CourtRentInfo{
			StadiumCourtID:      court.ID,
			Name:                court.Name,
			RenterID:            row.RenterID,
			RenterName:          row.RenterName,
			TeamID:              row.TeamID,
			CurrentMemberNumber: row.CurrentMemberNumber,
			MaxNumberOfMember:   row.MaxNumberOfMember,
			LevelRequirement:    models.DecodeLevels(row.LevelRequirement),
			IsMatching:          row.IsMatching,
		}
		info.Status, info.StatusDescription = r.joinStatus(query, row)
		infos = append(infos, info)
	}
	return infos, nil
}

// joinStatus classifies one booked court against the requester's party.
// Requester identity wins over capacity checks: the renter or an existing
// member can never rejoin through this door.
func (r *stadiumRepository) joinStatus(query RentInfoQuery, row rentInfoRow) (string, string) {
	if query.UserID != 0 {
		if row.RenterID == query.UserID {
			return CourtUnjoinable, "requester is the renter of this slot"
		}
		var count int64
		if err := r.db.Model(&models.TeamMember{}).
			Where("team_id = ? AND user_id = ? AND status = ?", row.TeamID, query.UserID, models.StatusActive).
			Count(&count).Error; err == nil && count > 0 {
			return CourtUnjoinable, "requester already joined this team"
		}
	}
	if row.CurrentMemberNumber >= row.MaxNumberOfMember {
		return CourtFull, ""
	}
	if !models.LevelCodeContains(row.LevelRequirement, query.LevelRequirement) {
		return CourtUnjoinable, "level requirement does not match"
	}
	if row.MaxNumberOfMember-row.CurrentMemberNumber < query.Headcount {
		return CourtUnjoinable, "headcount exceeds remaining team capacity"
	}
	return CourtJoinable, ""
}
