package stadium

import (
	"errors"
	"testing"
	"time"

	"github.com/cloudnativeg23/stadium-matching/internal/apperr"
	"github.com/cloudnativeg23/stadium-matching/internal/models"
)

func testWindows(weekdays []int, start, end int) map[int]models.StadiumAvailableTime {
	windows := make(map[int]models.StadiumAvailableTime, len(weekdays))
	for _, wd := range weekdays {
		windows[wd] = models.StadiumAvailableTime{Weekday: wd, StartTime: start, EndTime: end}
	}
	return windows
}

func TestExpandSpan(t *testing.T) {
	tuesday := monday.AddDate(0, 0, 1)
	allWeek := testWindows([]int{1, 2, 3, 4, 5, 6, 7}, 10, 13)

	tests := []struct {
		name    string
		span    DisableSpan
		windows map[int]models.StadiumAvailableTime
		want    []Slot
		wantErr error
	}{
		{
			name: "single day clipped to window",
			span: DisableSpan{StartDate: monday, EndDate: monday, StartHour: 0, EndHour: 24},
			windows: allWeek,
			want: []Slot{
				{Date: monday, StartTime: 10},
				{Date: monday, StartTime: 11},
				{Date: monday, StartTime: 12},
			},
		},
		{
			name:    "hour bounds narrow the edge day",
			span:    DisableSpan{StartDate: monday, EndDate: monday, StartHour: 11, EndHour: 12},
			windows: allWeek,
			want:    []Slot{{Date: monday, StartTime: 11}},
		},
		{
			name: "multi day covers middle days fully",
			span: DisableSpan{StartDate: monday, EndDate: tuesday.AddDate(0, 0, 1), StartHour: 12, EndHour: 11},
			windows: allWeek,
			want: []Slot{
				{Date: monday, StartTime: 12},
				{Date: tuesday, StartTime: 10},
				{Date: tuesday, StartTime: 11},
				{Date: tuesday, StartTime: 12},
				{Date: tuesday.AddDate(0, 0, 1), StartTime: 10},
			},
		},
		{
			name:    "closed weekday skipped",
			span:    DisableSpan{StartDate: monday, EndDate: tuesday, StartHour: 0, EndHour: 24},
			windows: testWindows([]int{2}, 10, 12),
			want: []Slot{
				{Date: tuesday, StartTime: 10},
				{Date: tuesday, StartTime: 11},
			},
		},
		{
			name:    "end before start",
			span:    DisableSpan{StartDate: tuesday, EndDate: monday, StartHour: 10, EndHour: 12},
			windows: allWeek,
			wantErr: apperr.ErrInvalidRange,
		},
		{
			name:    "empty same-day hour span",
			span:    DisableSpan{StartDate: monday, EndDate: monday, StartHour: 12, EndHour: 12},
			windows: allWeek,
			wantErr: apperr.ErrInvalidRange,
		},
		{
			name:    "hours out of range",
			span:    DisableSpan{StartDate: monday, EndDate: monday, StartHour: -1, EndHour: 12},
			windows: allWeek,
			wantErr: apperr.ErrInvalidRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandSpan(tt.span, tt.windows)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("expandSpan: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("slots = %v, want %v", got, tt.want)
			}
			for i := range got {
				if !got[i].Date.Equal(tt.want[i].Date) || got[i].StartTime != tt.want[i].StartTime {
					t.Errorf("slot[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDisableRangeIsIdempotent(t *testing.T) {
	f := newStadiumFixture(t)
	span := DisableSpan{StartDate: monday, EndDate: monday, StartHour: 10, EndHour: 12}

	first, err := f.repo.DisableRange(f.stadium.ID, span)
	if err != nil {
		t.Fatalf("DisableRange: %v", err)
	}
	if len(first.Created) != 2 || len(first.AlreadyDisabled) != 0 {
		t.Fatalf("first call: created %d, already %d, want 2/0", len(first.Created), len(first.AlreadyDisabled))
	}
	if first.Message != MsgDisableSuccess {
		t.Errorf("message = %q, want %q", first.Message, MsgDisableSuccess)
	}

	second, err := f.repo.DisableRange(f.stadium.ID, span)
	if err != nil {
		t.Fatalf("second DisableRange: %v", err)
	}
	if len(second.Created) != 0 || len(second.AlreadyDisabled) != 2 {
		t.Fatalf("second call: created %d, already %d, want 0/2", len(second.Created), len(second.AlreadyDisabled))
	}
	if second.Message != MsgAlreadyDisabled {
		t.Errorf("message = %q, want %q", second.Message, MsgAlreadyDisabled)
	}

	// Overlapping span disables only the uncovered hour.
	overlap, err := f.repo.DisableRange(f.stadium.ID,
		DisableSpan{StartDate: monday, EndDate: monday, StartHour: 11, EndHour: 13})
	if err != nil {
		t.Fatalf("overlapping DisableRange: %v", err)
	}
	if len(overlap.Created) != 1 || overlap.Created[0].StartTime != 12 {
		t.Fatalf("overlap created = %+v, want exactly 12:00", overlap.Created)
	}
}

func TestDisableRangeCancelsBookings(t *testing.T) {
	f := newStadiumFixture(t)
	courtA := f.stadium.Courts[0]

	hit := f.rent(t, courtA.ID, 10, 4, []string{"easy"})
	miss := f.rent(t, courtA.ID, 12, 4, []string{"easy"})

	result, err := f.repo.DisableRange(f.stadium.ID,
		DisableSpan{StartDate: monday, EndDate: monday, StartHour: 10, EndHour: 11})
	if err != nil {
		t.Fatalf("DisableRange: %v", err)
	}

	if len(result.Cancelled) != 1 || result.Cancelled[0].OrderID != hit.Order.ID {
		t.Fatalf("cancelled = %+v, want exactly the 10:00 booking", result.Cancelled)
	}
	if result.Cancelled[0].MemberEmails[0] != f.renter.Email {
		t.Errorf("recipients = %v, want renter first", result.Cancelled[0].MemberEmails)
	}

	var order models.Order
	f.db.First(&order, miss.Order.ID)
	if order.Status != models.StatusActive {
		t.Errorf("12:00 booking status = %d, want active", order.Status)
	}
}

func TestDisableRangeOutsideWindow(t *testing.T) {
	f := newStadiumFixture(t)

	_, err := f.repo.DisableRange(f.stadium.ID,
		DisableSpan{StartDate: monday, EndDate: monday, StartHour: 14, EndHour: 16})
	if !errors.Is(err, apperr.ErrInvalidRange) {
		t.Fatalf("err = %v, want ErrInvalidRange for span outside the open window", err)
	}
}

func TestUndisableRoundTrip(t *testing.T) {
	f := newStadiumFixture(t)
	span := DisableSpan{StartDate: monday, EndDate: monday, StartHour: 10, EndHour: 12}

	if _, err := f.repo.DisableRange(f.stadium.ID, span); err != nil {
		t.Fatalf("DisableRange: %v", err)
	}

	result, err := f.repo.UndisableRange(f.stadium.ID,
		DisableSpan{StartDate: monday, EndDate: monday, StartHour: 10, EndHour: 13})
	if err != nil {
		t.Fatalf("UndisableRange: %v", err)
	}
	if len(result.Removed) != 2 {
		t.Errorf("removed %d slots, want 2", len(result.Removed))
	}
	if len(result.Skipped) != 1 || result.Skipped[0].StartTime != 12 {
		t.Errorf("skipped = %+v, want exactly the never-disabled 12:00", result.Skipped)
	}

	disabled, err := f.repo.IsDisabled(f.stadium.ID, monday, 10)
	if err != nil {
		t.Fatalf("IsDisabled: %v", err)
	}
	if disabled {
		t.Error("slot still disabled after undisable")
	}

	// Undisabling a clean range has nothing to remove.
	if _, err := f.repo.UndisableRange(f.stadium.ID, span); !errors.Is(err, apperr.ErrInvalidRange) {
		t.Errorf("undisable clean range err = %v, want ErrInvalidRange", err)
	}
}

func TestIsDisabledNormalizesDate(t *testing.T) {
	f := newStadiumFixture(t)

	if _, err := f.repo.DisableRange(f.stadium.ID,
		DisableSpan{StartDate: monday, EndDate: monday, StartHour: 10, EndHour: 11}); err != nil {
		t.Fatalf("DisableRange: %v", err)
	}

	// Same calendar day expressed with an offset timezone.
	taipei := time.FixedZone("UTC+8", 8*3600)
	late := time.Date(2023, 11, 20, 23, 30, 0, 0, taipei)
	disabled, err := f.repo.IsDisabled(f.stadium.ID, late, 10)
	if err != nil {
		t.Fatalf("IsDisabled: %v", err)
	}
	if !disabled {
		t.Error("date with timezone offset did not match the disabled slot")
	}
}
