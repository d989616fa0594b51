// Package apperr defines the failure kinds the booking core reports.
// Controllers map them onto HTTP statuses; repositories wrap them with
// context via fmt.Errorf("...: %w", ...).
package apperr

import "errors"

var (
	// ErrNotFound covers missing stadiums, courts, teams, orders and users.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidRange marks a disable/undisable span that expands to zero
	// in-window slots. Distinct from the idempotent "already in requested
	// state" case, which succeeds with an empty result.
	ErrInvalidRange = errors.New("range contains no bookable slots")

	// ErrConflict marks a write that lost to existing state: renting a
	// disabled or taken court-hour, or cancelling a cancelled order.
	ErrConflict = errors.New("conflicts with current booking state")

	// ErrUnresolvedMember marks a rent/join whose member email list contains
	// an unknown address. The whole transaction is rolled back.
	ErrUnresolvedMember = errors.New("member email does not resolve to a user")
)
