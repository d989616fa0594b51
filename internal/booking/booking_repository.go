package booking

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cloudnativeg23/stadium-matching/internal/apperr"
	"github.com/cloudnativeg23/stadium-matching/internal/models"
)

// RentRequest is the input for one atomic booking: order + team + members.
type RentRequest struct {
	StadiumCourtID    uint
	RenterID          uint
	Date              time.Time
	StartTime         int
	EndTime           int
	IsMatching        bool
	MaxNumberOfMember int
	LevelRequirement  []string
	TeamMemberEmails  []string
}

// JoinRequest adds the current user plus a list of companions to a team.
type JoinRequest struct {
	TeamID           uint
	UserID           uint
	LevelRequirement string
	TeamMemberEmails []string
}

// RentResult is the committed aggregate returned by Rent.
type RentResult struct {
	Order        models.Order `json:"order"`
	Team         models.Team  `json:"team"`
	Levels       []string     `json:"level_requirement"`
	MemberEmails []string     `json:"member_emails"`
}

// RentedSummary is the joined display record for notification bodies and
// rent/join history lists.
type RentedSummary struct {
	OrderID     uint      `json:"order_id"`
	Date        time.Time `json:"date"`
	StartTime   int       `json:"start_time"`
	EndTime     int       `json:"end_time"`
	StadiumName string    `json:"stadium_name"`
	VenueName   string    `json:"venue_name"`
	CourtName   string    `json:"court_name"`
	RenterName  string    `json:"renter_name"`
	RenterEmail string    `json:"renter_email"`
}

// BookingRepository is the only writer of orders, teams and team members.
type BookingRepository interface {
	Rent(req RentRequest) (*RentResult, error)
	Join(req JoinRequest) (*models.Team, error)
	Leave(teamID, userID uint) error
	CancelOrder(orderID, requesterID uint) error
	FinalizeMatching(orderID uint) (*models.Team, error)

	GetTeamByID(teamID uint) (*models.Team, error)
	GetTeamByOrderID(orderID uint) (*models.Team, error)
	GetOrderSummary(orderID uint) (*RentedSummary, error)
	TeamMemberEmails(teamID uint) ([]string, error)
	RentList(renterID uint) ([]RentListEntry, error)
	JoinList(userID uint) ([]JoinListEntry, error)
}

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

// Rent creates Order, Team and TeamMember rows as one transaction. Any
// unresolved member email rolls everything back. The partial unique index on
// orders is the authoritative conflict check; the pre-checks below exist for
// descriptive errors.
func (r *bookingRepository) Rent(req RentRequest) (*RentResult, error) {
	levelCode, err := models.EncodeLevels(req.LevelRequirement)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrConflict, err)
	}

	var result RentResult
	err = r.db.Transaction(func(tx *gorm.DB) error {
		var court models.StadiumCourt
		if err := tx.First(&court, req.StadiumCourtID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: stadium court %d", apperr.ErrNotFound, req.StadiumCourtID)
			}
			return err
		}
		if !court.IsEnabled {
			return fmt.Errorf("%w: stadium court %d is disabled", apperr.ErrConflict, req.StadiumCourtID)
		}

		var std models.Stadium
		if err := tx.First(&std, court.StadiumID).Error; err != nil {
			return fmt.Errorf("load stadium %d: %w", court.StadiumID, err)
		}
		if req.MaxNumberOfMember > std.MaxNumberOfPeople {
			return fmt.Errorf("%w: team size %d exceeds stadium capacity %d",
				apperr.ErrConflict, req.MaxNumberOfMember, std.MaxNumberOfPeople)
		}

		date := models.NormalizeDate(req.Date)

		// Provider-wide disable wins over any rent attempt.
		var disabled int64
		if err := tx.Model(&models.StadiumDisable{}).
			Where("stadium_id = ? AND date = ? AND start_time = ?", court.StadiumID, date, req.StartTime).
			Count(&disabled).Error; err != nil {
			return err
		}
		if disabled > 0 {
			return fmt.Errorf("%w: stadium is disabled at the requested time", apperr.ErrConflict)
		}

		members, err := resolveMembers(tx, req.TeamMemberEmails)
		if err != nil {
			return err
		}
		if 1+len(members) > req.MaxNumberOfMember {
			return fmt.Errorf("%w: %d members exceed team capacity %d",
				apperr.ErrConflict, 1+len(members), req.MaxNumberOfMember)
		}

		order := models.Order{
			StadiumCourtID: req.StadiumCourtID,
			RenterID:       req.RenterID,
			Date:           date,
			StartTime:      req.StartTime,
			EndTime:        req.EndTime,
			Status:         models.StatusActive,
			IsMatching:     req.IsMatching,
		}
		if err := tx.Create(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: court already booked at the requested time", apperr.ErrConflict)
			}
			return fmt.Errorf("create order: %w", err)
		}

		team := models.Team{
			OrderID:             order.ID,
			MaxNumberOfMember:   req.MaxNumberOfMember,
			CurrentMemberNumber: 1 + len(members),
			LevelRequirement:    levelCode,
		}
		if err := tx.Create(&team).Error; err != nil {
			return fmt.Errorf("create team: %w", err)
		}

		memberEmails := make([]string, 0, len(members))
		for _, member := range members {
			tm := models.TeamMember{TeamID: team.ID, UserID: member.ID, Status: models.StatusActive}
			if err := tx.Create(&tm).Error; err != nil {
				return fmt.Errorf("create team member: %w", err)
			}
			memberEmails = append(memberEmails, member.Email)
		}

		result = RentResult{
			Order:        order,
			Team:         team,
			Levels:       models.DecodeLevels(levelCode),
			MemberEmails: memberEmails,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Join upserts membership rows for the user and each companion. Rows left
// behind by Leave (status 0) are reactivated instead of duplicated. Capacity
// and level are re-validated here even though the availability resolver
// already filtered joinable teams upstream.
func (r *bookingRepository) Join(req JoinRequest) (*models.Team, error) {
	var joined models.Team
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.First(&team, req.TeamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: team %d", apperr.ErrNotFound, req.TeamID)
			}
			return err
		}

		if req.LevelRequirement != "" && !models.LevelCodeContains(team.LevelRequirement, req.LevelRequirement) {
			return fmt.Errorf("%w: level %q does not match team requirement %v",
				apperr.ErrConflict, req.LevelRequirement, models.DecodeLevels(team.LevelRequirement))
		}

		members, err := resolveMembers(tx, req.TeamMemberEmails)
		if err != nil {
			return err
		}

		var joiner models.User
		if err := tx.First(&joiner, req.UserID).Error; err != nil {
			return fmt.Errorf("%w: user %d", apperr.ErrNotFound, req.UserID)
		}
		joiners := append([]models.User{joiner}, members...)

		if team.CurrentMemberNumber+len(joiners) > team.MaxNumberOfMember {
			return fmt.Errorf("%w: %d joiners exceed remaining capacity %d/%d",
				apperr.ErrConflict, len(joiners), team.CurrentMemberNumber, team.MaxNumberOfMember)
		}

		for _, user := range joiners {
			var existing models.TeamMember
			err := tx.Where("team_id = ? AND user_id = ?", team.ID, user.ID).First(&existing).Error
			switch {
			case err == nil:
				if existing.Status == models.StatusActive {
					return fmt.Errorf("%w: user %s is already in the team", apperr.ErrConflict, user.Email)
				}
				if err := tx.Model(&existing).Update("status", models.StatusActive).Error; err != nil {
					return fmt.Errorf("reactivate team member: %w", err)
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				tm := models.TeamMember{TeamID: team.ID, UserID: user.ID, Status: models.StatusActive}
				if err := tx.Create(&tm).Error; err != nil {
					return fmt.Errorf("create team member: %w", err)
				}
			default:
				return err
			}
		}

		team.CurrentMemberNumber += len(joiners)
		if err := tx.Model(&models.Team{}).Where("id = ?", team.ID).
			Update("current_member_number", team.CurrentMemberNumber).Error; err != nil {
			return fmt.Errorf("update member count: %w", err)
		}
		joined = team
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &joined, nil
}

// Leave flips the member row to status 0 and decrements the team counter.
// Both writes happen in one transaction or not at all.
func (r *bookingRepository) Leave(teamID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.First(&team, teamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: team %d", apperr.ErrNotFound, teamID)
			}
			return err
		}

		res := tx.Model(&models.TeamMember{}).
			Where("team_id = ? AND user_id = ? AND status = ?", teamID, userID, models.StatusActive).
			Update("status", models.StatusCancelled)
		if res.Error != nil {
			return fmt.Errorf("leave team: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: user %d is not an active member of team %d", apperr.ErrNotFound, userID, teamID)
		}

		if err := tx.Model(&models.Team{}).Where("id = ?", teamID).
			Update("current_member_number", gorm.Expr("current_member_number - 1")).Error; err != nil {
			return fmt.Errorf("decrement member count: %w", err)
		}
		return nil
	})
}

// CancelOrder transitions an active order to cancelled. The transition is
// one-directional; cancelling twice is a conflict. requesterID 0 skips the
// ownership check (used by provider-side flows).
func (r *bookingRepository) CancelOrder(orderID, requesterID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", apperr.ErrNotFound, orderID)
			}
			return err
		}
		if requesterID != 0 && order.RenterID != requesterID {
			return fmt.Errorf("%w: order %d does not belong to user %d", apperr.ErrNotFound, orderID, requesterID)
		}
		if order.Status != models.StatusActive {
			return fmt.Errorf("%w: order %d is already cancelled", apperr.ErrConflict, orderID)
		}
		return tx.Model(&order).Update("status", models.StatusCancelled).Error
	})
}

// FinalizeMatching closes the matching room of an order: the team stops
// accepting automated matches. Called by the matching scheduler hook.
func (r *bookingRepository) FinalizeMatching(orderID uint) (*models.Team, error) {
	var team models.Team
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", apperr.ErrNotFound, orderID)
			}
			return err
		}
		if !order.IsMatching {
			return fmt.Errorf("%w: matching for order %d is already closed", apperr.ErrConflict, orderID)
		}
		if err := tx.Model(&order).Update("is_matching", false).Error; err != nil {
			return fmt.Errorf("close matching: %w", err)
		}
		return tx.Where("order_id = ?", orderID).First(&team).Error
	})
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *bookingRepository) GetTeamByID(teamID uint) (*models.Team, error) {
	var team models.Team
	if err := r.db.Preload("Members").First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: team %d", apperr.ErrNotFound, teamID)
		}
		return nil, err
	}
	return &team, nil
}

func (r *bookingRepository) GetTeamByOrderID(orderID uint) (*models.Team, error) {
	var team models.Team
	if err := r.db.Where("order_id = ?", orderID).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: team of order %d", apperr.ErrNotFound, orderID)
		}
		return nil, err
	}
	return &team, nil
}

// GetOrderSummary joins order, court, stadium and renter for display and
// notification bodies.
func (r *bookingRepository) GetOrderSummary(orderID uint) (*RentedSummary, error) {
	var summary RentedSummary
	err := r.db.Model(&models.Order{}).
		Select(`orders.id AS order_id, orders.date, orders.start_time, orders.end_time,
			stadiums.name AS stadium_name, stadiums.venue_name,
			stadium_courts.name AS court_name,
			users.name AS renter_name, users.email AS renter_email`).
		Joins("JOIN stadium_courts ON stadium_courts.id = orders.stadium_court_id").
		Joins("JOIN stadiums ON stadiums.id = stadium_courts.stadium_id").
		Joins("JOIN users ON users.id = orders.renter_id").
		Where("orders.id = ?", orderID).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	if summary.OrderID == 0 {
		return nil, fmt.Errorf("%w: order %d", apperr.ErrNotFound, orderID)
	}
	return &summary, nil
}

// TeamMemberEmails resolves the renter plus all active member emails.
func (r *bookingRepository) TeamMemberEmails(teamID uint) ([]string, error) {
	var team models.Team
	if err := r.db.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: team %d", apperr.ErrNotFound, teamID)
		}
		return nil, err
	}
	var order models.Order
	if err := r.db.First(&order, team.OrderID).Error; err != nil {
		return nil, fmt.Errorf("resolve order of team %d: %w", teamID, err)
	}
	return teamMemberEmails(r.db, teamID, order.RenterID)
}

// resolveMembers looks up every email; a single unknown address fails the
// whole operation so no partial membership is ever written.
func resolveMembers(tx *gorm.DB, emails []string) ([]models.User, error) {
	members := make([]models.User, 0, len(emails))
	for _, email := range emails {
		var user models.User
		if err := tx.Where("email = ?", email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", apperr.ErrUnresolvedMember, email)
			}
			return nil, err
		}
		members = append(members, user)
	}
	return members, nil
}
