package model

import "time"

// Seat reservation statuses.  At most one reservation per
// (event, seat number) may be HELD or CONFIRMED at any time; RELEASED
// rows free the seat for future holds and are kept for audit.
const (
	SeatStatusHeld      = "HELD"
	SeatStatusConfirmed = "CONFIRMED"
	SeatStatusReleased  = "RELEASED"
)

// SeatReservation is a claim on a specific numbered seat owned by a
// booking.  Events without numbered seating never create these rows;
// the tier counter alone governs their capacity.
//
// Fields:
//  ID         – primary key identifier.
//  EventID    – event the seat belongs to.
//  BookingID  – booking that owns the claim.
//  SeatNumber – seat label, e.g. "A1".
//  Status     – one of the SeatStatus* constants.
//  CreatedAt  – creation timestamp.
type SeatReservation struct {
	ID         uint64    // seat_reservations.id
	EventID    uint64    // seat_reservations.event_id
	BookingID  uint64    // seat_reservations.booking_id
	SeatNumber string    // seat_reservations.seat_number
	Status     string    // seat_reservations.status
	CreatedAt  time.Time // seat_reservations.created_at
}
