package stadium

import (
	"testing"

	"github.com/cloudnativeg23/stadium-matching/internal/booking"
)

func rentInfoByID(t *testing.T, infos []CourtRentInfo, courtID uint) CourtRentInfo {
	t.Helper()
	for _, info := range infos {
		if info.StadiumCourtID == courtID {
			return info
		}
	}
	t.Fatalf("court %d missing from rent info %+v", courtID, infos)
	return CourtRentInfo{}
}

func TestGetRentInfo(t *testing.T) {
	f := newStadiumFixture(t)
	courtA, courtB := f.stadium.Courts[0], f.stadium.Courts[1]

	booked := f.rent(t, courtA.ID, 10, 4, []string{"easy", "medium"})

	query := RentInfoQuery{
		StadiumID:        f.stadium.ID,
		Date:             monday,
		StartTime:        10,
		Headcount:        2,
		LevelRequirement: "easy",
	}

	infos, err := f.repo.GetRentInfo(query)
	if err != nil {
		t.Fatalf("GetRentInfo: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("rent info for %d courts, want 2", len(infos))
	}

	free := rentInfoByID(t, infos, courtB.ID)
	if free.Status != CourtRentable {
		t.Errorf("free court status = %q, want rentable", free.Status)
	}

	occupied := rentInfoByID(t, infos, courtA.ID)
	if occupied.Status != CourtJoinable {
		t.Errorf("occupied court status = %q, want joinable", occupied.Status)
	}
	if occupied.TeamID != booked.Team.ID || occupied.RenterName != "Renter" {
		t.Errorf("occupied court carries wrong team info: %+v", occupied)
	}
	if len(occupied.LevelRequirement) != 2 {
		t.Errorf("levels = %v, want easy+medium decoded", occupied.LevelRequirement)
	}
}

func TestGetRentInfoJoinStatuses(t *testing.T) {
	f := newStadiumFixture(t)
	courtA := f.stadium.Courts[0]
	booked := f.rent(t, courtA.ID, 10, 3, []string{"easy"})

	base := RentInfoQuery{
		StadiumID:        f.stadium.ID,
		Date:             monday,
		StartTime:        10,
		Headcount:        1,
		LevelRequirement: "easy",
	}

	t.Run("renter cannot rejoin own slot", func(t *testing.T) {
		query := base
		query.UserID = f.renter.ID
		infos, err := f.repo.GetRentInfo(query)
		if err != nil {
			t.Fatalf("GetRentInfo: %v", err)
		}
		if got := rentInfoByID(t, infos, courtA.ID).Status; got != CourtUnjoinable {
			t.Errorf("status = %q, want cannot_join for the renter", got)
		}
	})

	t.Run("existing member cannot rejoin", func(t *testing.T) {
		if _, err := f.booking.Join(booking.JoinRequest{
			TeamID: booked.Team.ID, UserID: f.mate.ID, LevelRequirement: "easy",
		}); err != nil {
			t.Fatalf("Join: %v", err)
		}
		query := base
		query.UserID = f.mate.ID
		infos, err := f.repo.GetRentInfo(query)
		if err != nil {
			t.Fatalf("GetRentInfo: %v", err)
		}
		if got := rentInfoByID(t, infos, courtA.ID).Status; got != CourtUnjoinable {
			t.Errorf("status = %q, want cannot_join for an existing member", got)
		}
	})

	t.Run("level mismatch", func(t *testing.T) {
		query := base
		query.LevelRequirement = "hard"
		infos, err := f.repo.GetRentInfo(query)
		if err != nil {
			t.Fatalf("GetRentInfo: %v", err)
		}
		if got := rentInfoByID(t, infos, courtA.ID).Status; got != CourtUnjoinable {
			t.Errorf("status = %q, want cannot_join on level mismatch", got)
		}
	})

	t.Run("headcount exceeds remaining seats", func(t *testing.T) {
		query := base
		query.Headcount = 2 // team is 2/3 after the join above
		infos, err := f.repo.GetRentInfo(query)
		if err != nil {
			t.Fatalf("GetRentInfo: %v", err)
		}
		if got := rentInfoByID(t, infos, courtA.ID).Status; got != CourtUnjoinable {
			t.Errorf("status = %q, want cannot_join when seats run out", got)
		}
	})

	t.Run("full team", func(t *testing.T) {
		other := f.addUser(t, "Third", "third@example.com")
		if _, err := f.booking.Join(booking.JoinRequest{
			TeamID: booked.Team.ID, UserID: other.ID, LevelRequirement: "easy",
		}); err != nil {
			t.Fatalf("Join: %v", err)
		}
		infos, err := f.repo.GetRentInfo(base)
		if err != nil {
			t.Fatalf("GetRentInfo: %v", err)
		}
		if got := rentInfoByID(t, infos, courtA.ID).Status; got != CourtFull {
			t.Errorf("status = %q, want full", got)
		}
	})
}

func TestGetRentInfoHeadcountOverStadiumCapacity(t *testing.T) {
	f := newStadiumFixture(t)

	infos, err := f.repo.GetRentInfo(RentInfoQuery{
		StadiumID:        f.stadium.ID,
		Date:             monday,
		StartTime:        10,
		Headcount:        f.stadium.MaxNumberOfPeople + 1,
		LevelRequirement: "easy",
	})
	if err != nil {
		t.Fatalf("GetRentInfo: %v", err)
	}
	for _, info := range infos {
		if info.Status != CourtUnjoinable {
			t.Errorf("court %d status = %q, want cannot_join for oversized party", info.StadiumCourtID, info.Status)
		}
	}
}
