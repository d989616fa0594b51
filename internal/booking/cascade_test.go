package booking

import (
	"testing"
	"time"

	"github.com/cloudnativeg23/stadium-matching/internal/models"
)

func (f *fixture) mustRent(t *testing.T, req RentRequest) *RentResult {
	t.Helper()
	result, err := f.repo.Rent(req)
	if err != nil {
		t.Fatalf("Rent: %v", err)
	}
	return result
}

func orderStatus(t *testing.T, f *fixture, orderID uint) int {
	t.Helper()
	var order models.Order
	if err := f.db.First(&order, orderID).Error; err != nil {
		t.Fatalf("load order %d: %v", orderID, err)
	}
	return order.Status
}

func TestCancelOrdersForCourt(t *testing.T) {
	f := newFixture(t)

	reqA := f.rentRequest()
	reqA.TeamMemberEmails = []string{f.mate.Email}
	onA := f.mustRent(t, reqA)

	reqB := f.rentRequest()
	reqB.StadiumCourtID = f.courtB.ID
	reqB.RenterID = f.other.ID
	onB := f.mustRent(t, reqB)

	cancelled, err := CancelOrdersForCourt(f.db, f.courtA.ID)
	if err != nil {
		t.Fatalf("CancelOrdersForCourt: %v", err)
	}

	if len(cancelled) != 1 {
		t.Fatalf("cancelled %d bookings, want 1", len(cancelled))
	}
	cb := cancelled[0]
	if cb.OrderID != onA.Order.ID || cb.CourtName != f.courtA.Name {
		t.Errorf("cancelled booking = %+v, want order %d on court %s", cb, onA.Order.ID, f.courtA.Name)
	}
	if len(cb.MemberEmails) != 2 || cb.MemberEmails[0] != f.renter.Email {
		t.Errorf("member emails = %v, want renter first plus mate", cb.MemberEmails)
	}

	if got := orderStatus(t, f, onA.Order.ID); got != models.StatusCancelled {
		t.Errorf("order on court A status = %d, want cancelled", got)
	}
	if got := orderStatus(t, f, onB.Order.ID); got != models.StatusActive {
		t.Errorf("order on court B status = %d, want active (untouched)", got)
	}
}

func TestCancelOrdersExceedingCapacity(t *testing.T) {
	f := newFixture(t)

	big := f.rentRequest()
	big.MaxNumberOfMember = 6
	bigOrder := f.mustRent(t, big)

	small := f.rentRequest()
	small.StadiumCourtID = f.courtB.ID
	small.RenterID = f.other.ID
	small.MaxNumberOfMember = 3
	smallOrder := f.mustRent(t, small)

	cancelled, err := CancelOrdersExceedingCapacity(f.db, f.stadium.ID, 4)
	if err != nil {
		t.Fatalf("CancelOrdersExceedingCapacity: %v", err)
	}

	if len(cancelled) != 1 || cancelled[0].OrderID != bigOrder.Order.ID {
		t.Fatalf("cancelled = %+v, want exactly the 6-person booking", cancelled)
	}
	if got := orderStatus(t, f, smallOrder.Order.ID); got != models.StatusActive {
		t.Errorf("3-person booking status = %d, want active", got)
	}
}

func TestCancelOrdersAtSlot(t *testing.T) {
	f := newFixture(t)

	hit := f.mustRent(t, f.rentRequest())

	otherSlot := f.rentRequest()
	otherSlot.StartTime, otherSlot.EndTime = 14, 15
	miss := f.mustRent(t, otherSlot)

	date := time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC)
	cancelled, err := CancelOrdersAtSlot(f.db, f.stadium.ID, date, 10)
	if err != nil {
		t.Fatalf("CancelOrdersAtSlot: %v", err)
	}

	if len(cancelled) != 1 || cancelled[0].OrderID != hit.Order.ID {
		t.Fatalf("cancelled = %+v, want exactly the 10:00 booking", cancelled)
	}
	if got := orderStatus(t, f, miss.Order.ID); got != models.StatusActive {
		t.Errorf("14:00 booking status = %d, want active", got)
	}
}
