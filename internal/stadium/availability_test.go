package stadium

import (
	"testing"

	"github.com/cloudnativeg23/stadium-matching/internal/models"
)

func mondaySlots(t *testing.T, tt *Timetable) map[int]SlotStatus {
	t.Helper()
	if len(tt.Days) != availabilityHorizonDays {
		t.Fatalf("timetable has %d days, want %d", len(tt.Days), availabilityHorizonDays)
	}
	day := tt.Days[0]
	if day.Weekday != 1 {
		t.Fatalf("first day weekday = %d, want Monday", day.Weekday)
	}
	return day.Slots
}

func TestAvailabilityFreeStadium(t *testing.T) {
	f := newStadiumFixture(t)

	tt, err := f.repo.GetAvailability(f.stadium.ID, monday, 2, "easy")
	if err != nil {
		t.Fatalf("GetAvailability: %v", err)
	}

	slots := mondaySlots(t, tt)
	if len(slots) != 3 {
		t.Fatalf("slots = %v, want exactly the 10-13 window hours", slots)
	}
	for hour, status := range slots {
		if status != SlotAvailable {
			t.Errorf("slot %d = %q, want Available", hour, status)
		}
	}
	if _, ok := slots[9]; ok {
		t.Error("out-of-window hour 9 present in timetable")
	}
}

func TestAvailabilityDisableWinsOverBooking(t *testing.T) {
	f := newStadiumFixture(t)
	f.rent(t, f.stadium.Courts[0].ID, 10, 4, []string{"easy"})

	if _, err := f.repo.DisableRange(f.stadium.ID,
		DisableSpan{StartDate: monday, EndDate: monday, StartHour: 10, EndHour: 11}); err != nil {
		t.Fatalf("DisableRange: %v", err)
	}

	tt, err := f.repo.GetAvailability(f.stadium.ID, monday, 2, "easy")
	if err != nil {
		t.Fatalf("GetAvailability: %v", err)
	}
	if got := mondaySlots(t, tt)[10]; got != SlotDisabled {
		t.Errorf("disabled slot = %q, want Disabled", got)
	}
}

func TestAvailabilityFullyBooked(t *testing.T) {
	f := newStadiumFixture(t)
	f.rent(t, f.stadium.Courts[0].ID, 10, 4, []string{"easy"})
	f.rent(t, f.stadium.Courts[1].ID, 10, 4, []string{"easy"})

	tt, err := f.repo.GetAvailability(f.stadium.ID, monday, 1, "easy")
	if err != nil {
		t.Fatalf("GetAvailability: %v", err)
	}
	if got := mondaySlots(t, tt)[10]; got != SlotBooked {
		t.Errorf("fully booked slot = %q, want Booked", got)
	}
}

func TestAvailabilityPartialOccupancy(t *testing.T) {
	f := newStadiumFixture(t)
	// One of two courts booked: team of 4 with 1 member, easy+medium.
	f.rent(t, f.stadium.Courts[0].ID, 10, 4, []string{"easy", "medium"})

	tests := []struct {
		name      string
		headcount int
		level     string
		want      SlotStatus
	}{
		{"joinable level and headcount", 2, "easy", SlotAvailable},
		{"medium also contained", 3, "medium", SlotAvailable},
		{"level outside the requirement", 2, "hard", SlotBooked},
		{"headcount exceeds remaining seats", 4, "easy", SlotBooked},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tt, err := f.repo.GetAvailability(f.stadium.ID, monday, tc.headcount, tc.level)
			if err != nil {
				t.Fatalf("GetAvailability: %v", err)
			}
			if got := mondaySlots(t, tt)[10]; got != tc.want {
				t.Errorf("slot = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAvailabilityNoEnabledCourts(t *testing.T) {
	f := newStadiumFixture(t)
	for _, court := range f.stadium.Courts {
		if err := f.db.Model(&models.StadiumCourt{}).Where("id = ?", court.ID).
			Update("is_enabled", false).Error; err != nil {
			t.Fatalf("disable court: %v", err)
		}
	}

	tt, err := f.repo.GetAvailability(f.stadium.ID, monday, 1, "easy")
	if err != nil {
		t.Fatalf("GetAvailability: %v", err)
	}
	for hour, status := range mondaySlots(t, tt) {
		if status != SlotBooked {
			t.Errorf("slot %d = %q, want Booked with no courts to rent", hour, status)
		}
	}
}

func TestAvailabilityClosedWeekdayHasNoSlots(t *testing.T) {
	f := newStadiumFixture(t)

	// Shrink the window to Mondays only; every other day must come back
	// with an empty slot map.
	if _, err := f.repo.UpdateStadium(f.stadium.ID, UpdateStadiumInput{
		Weekdays: []int{1}, StartTime: 10, EndTime: 13,
	}); err != nil {
		t.Fatalf("UpdateStadium: %v", err)
	}

	tt, err := f.repo.GetAvailability(f.stadium.ID, monday, 1, "easy")
	if err != nil {
		t.Fatalf("GetAvailability: %v", err)
	}
	for _, day := range tt.Days[1:] {
		if len(day.Slots) != 0 {
			t.Errorf("closed day %s has %d slots, want 0", day.Date, len(day.Slots))
		}
	}
}

func TestProviderAvailability(t *testing.T) {
	f := newStadiumFixture(t)
	f.rent(t, f.stadium.Courts[0].ID, 10, 4, []string{"easy"})
	if _, err := f.repo.DisableRange(f.stadium.ID,
		DisableSpan{StartDate: monday, EndDate: monday, StartHour: 12, EndHour: 13}); err != nil {
		t.Fatalf("DisableRange: %v", err)
	}

	tt, err := f.repo.GetProviderAvailability(f.stadium.ID, monday)
	if err != nil {
		t.Fatalf("GetProviderAvailability: %v", err)
	}

	slots := mondaySlots(t, tt)
	if got := slots[10]; got != SlotHasOrder {
		t.Errorf("slot 10 = %q, want has_order", got)
	}
	if got := slots[11]; got != SlotNoOrder {
		t.Errorf("slot 11 = %q, want no_order", got)
	}
	if got := slots[12]; got != SlotDisabled {
		t.Errorf("slot 12 = %q, want Disabled", got)
	}
}

func TestAvailabilityIgnoresCancelledOrders(t *testing.T) {
	f := newStadiumFixture(t)
	result := f.rent(t, f.stadium.Courts[0].ID, 10, 4, []string{"easy"})
	f.rent(t, f.stadium.Courts[1].ID, 10, 4, []string{"easy"})

	if err := f.booking.CancelOrder(result.Order.ID, f.renter.ID); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}

	tt, err := f.repo.GetAvailability(f.stadium.ID, monday, 2, "easy")
	if err != nil {
		t.Fatalf("GetAvailability: %v", err)
	}
	// One court freed up, the other is booked by a joinable team.
	if got := mondaySlots(t, tt)[10]; got != SlotAvailable {
		t.Errorf("slot = %q, want Available after cancellation", got)
	}
}
