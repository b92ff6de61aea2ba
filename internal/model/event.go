package model

import "time"

// Event statuses.  The set is deliberately small: an event is either
// visible and bookable (PUBLISHED, within its booking window) or it is
// not.  Historic aliases such as ACTIVE or BOOKING_OPEN are not used.
const (
	EventStatusDraft         = "DRAFT"          // not visible to the public
	EventStatusPublished     = "PUBLISHED"      // live; bookable inside the window
	EventStatusBookingClosed = "BOOKING_CLOSED" // window force-closed by an organiser
	EventStatusCompleted     = "COMPLETED"      // event took place
	EventStatusCancelled     = "CANCELLED"      // event will not take place
)

// Event represents a time-boxed event whose tickets are sold through
// this service.  Bookings are only accepted while the event is
// PUBLISHED and the current time falls inside the booking window.
//
// Fields:
//  ID              – primary key identifier.
//  Name            – display name of the event.
//  VenueName       – free-text venue label (venue CRUD lives elsewhere).
//  Status          – one of the EventStatus* constants.
//  NumberedSeating – whether bookings must name specific seats.
//  BookingOpensAt  – start of the booking window.
//  BookingClosesAt – end of the booking window.
//  StartsAt        – when the event itself begins.
//  CreatedAt       – creation timestamp.
type Event struct {
	ID              uint64    // events.id
	Name            string    // events.name
	VenueName       string    // events.venue_name
	Status          string    // events.status
	NumberedSeating bool      // events.numbered_seating
	BookingOpensAt  time.Time // events.booking_opens_at
	BookingClosesAt time.Time // events.booking_closes_at
	StartsAt        time.Time // events.starts_at
	CreatedAt       time.Time // events.created_at
}

// IsBookable reports whether the event accepts new bookings at the
// given instant: the status must be PUBLISHED and now must fall inside
// [BookingOpensAt, BookingClosesAt].
func (e *Event) IsBookable(now time.Time) bool {
	if e.Status != EventStatusPublished {
		return false
	}
	return !now.Before(e.BookingOpensAt) && !now.After(e.BookingClosesAt)
}
