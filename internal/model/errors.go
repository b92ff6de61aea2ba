// Package model defines the domain types persisted by the booking
// service together with the sentinel errors shared by the repository
// and service layers.  Handlers compare against these values with
// errors.Is to pick HTTP status codes; none of them is retried
// automatically.
package model

import "errors"

// Lookup failures.  Translated to HTTP 404.
var (
	ErrEventNotFound   = errors.New("event not found")
	ErrTierNotFound    = errors.New("price tier not found")
	ErrBookingNotFound = errors.New("booking not found")
)

// Business-rule violations.  Translated to HTTP 409; the caller must
// not blindly retry the same request.
var (
	// ErrBookingClosed means the event is not PUBLISHED or the current
	// time is outside its booking window.
	ErrBookingClosed = errors.New("booking is closed for this event")

	// ErrInsufficientSeats means the tier's available counter cannot
	// cover the requested quantity.  The debit that detected it left
	// the counter untouched.
	ErrInsufficientSeats = errors.New("not enough seats available")

	// ErrSeatConflict means at least one requested seat number is
	// already held or confirmed by another booking.  No partial holds
	// remain.
	ErrSeatConflict = errors.New("seat is already taken")

	// ErrInvalidState means the booking is not in a state that permits
	// the requested transition, e.g. confirming twice.
	ErrInvalidState = errors.New("booking is not in a valid state for this operation")

	// ErrBookingExpired means the payment deadline passed before the
	// confirmation arrived; the booking was transitioned to EXPIRED
	// and its inventory released.
	ErrBookingExpired = errors.New("booking has expired")

	// ErrSeatCountMismatch means the number of named seats does not
	// match the requested ticket quantity.
	ErrSeatCountMismatch = errors.New("seat numbers must match ticket quantity")

	// ErrSeatingMismatch means the seat selection does not fit the
	// event's seating type: numbered-seating events require named
	// seats, general-admission events reject them.
	ErrSeatingMismatch = errors.New("seat selection does not match event seating")

	// ErrAlreadyWaitlisted means the user already has a WAITING entry
	// for the event.
	ErrAlreadyWaitlisted = errors.New("user is already on the waitlist")

	// ErrNotWaitlisted means the user has no WAITING entry for the
	// event.
	ErrNotWaitlisted = errors.New("user is not on the waitlist")
)

// ErrForbidden is returned when the caller attempts an operation on a
// booking they do not own.  Translated to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting persistent state, such as joining the waitlist of an
// event that still has seats, or when the store gave up after retrying
// a deadlocked transaction.  Translated to HTTP 409.
var ErrConflict = errors.New("conflict")
