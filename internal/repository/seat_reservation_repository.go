package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// SeatTaken reports whether a seat currently has a live claim (HELD or
// CONFIRMED) for the event.  The read locks the matching index range
// (FOR UPDATE, a current read rather than the transaction's snapshot),
// so inside WithTx it sees claims committed after the transaction
// began and its gap lock serialises competing first-time claims on the
// same seat.  The unique index on (event_id, seat_number, active)
// remains the authority; CreateSeatReservations maps its violation to
// the same error.
func (s *Store) SeatTaken(ctx context.Context, eventID uint64, seatNumber string) (bool, error) {
	const q = `SELECT COUNT(*) FROM seat_reservations
               WHERE event_id = ? AND seat_number = ? AND status IN (?, ?)
               FOR UPDATE`
	var claims int
	err := s.q(ctx).QueryRowContext(ctx, q, eventID, seatNumber,
		model.SeatStatusHeld, model.SeatStatusConfirmed).Scan(&claims)
	if err != nil {
		return false, fmt.Errorf("check seat %q: %w", seatNumber, err)
	}
	return claims > 0, nil
}

// CreateSeatReservations bulk-inserts HELD rows for every seat of a
// booking.  Runs inside the booking's transaction, so a conflict
// detected afterwards rolls all of them back together.  A violation of
// the unique live-claim index means another booking committed a claim
// on one of the seats after our availability check; it surfaces as
// model.ErrSeatConflict and the whole transaction rolls back.
func (s *Store) CreateSeatReservations(ctx context.Context, eventID, bookingID uint64, seatNumbers []string) error {
	if len(seatNumbers) == 0 {
		return nil
	}
	q := `INSERT INTO seat_reservations (event_id, booking_id, seat_number, status) VALUES `
	args := make([]any, 0, len(seatNumbers)*4)
	for i, seat := range seatNumbers {
		if i > 0 {
			q += ","
		}
		q += "(?, ?, ?, ?)"
		args = append(args, eventID, bookingID, seat, model.SeatStatusHeld)
	}
	if _, err := s.q(ctx).ExecContext(ctx, q, args...); err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("seat already claimed: %w", model.ErrSeatConflict)
		}
		return fmt.Errorf("insert seat reservations: %w", err)
	}
	return nil
}

// ConfirmSeatReservations flips all of a booking's HELD seats to
// CONFIRMED.
func (s *Store) ConfirmSeatReservations(ctx context.Context, bookingID uint64) error {
	const q = `UPDATE seat_reservations SET status = ? WHERE booking_id = ? AND status = ?`
	if _, err := s.q(ctx).ExecContext(ctx, q,
		model.SeatStatusConfirmed, bookingID, model.SeatStatusHeld); err != nil {
		return fmt.Errorf("confirm seats for booking %d: %w", bookingID, err)
	}
	return nil
}

// ReleaseSeatReservations flips every not-yet-released seat of a
// booking to RELEASED, freeing the seat numbers for future holds.
// Covers both held seats (expiry, abandon) and confirmed seats
// (cancellation of a confirmed booking).
func (s *Store) ReleaseSeatReservations(ctx context.Context, bookingID uint64) error {
	const q = `UPDATE seat_reservations SET status = ? WHERE booking_id = ? AND status <> ?`
	if _, err := s.q(ctx).ExecContext(ctx, q,
		model.SeatStatusReleased, bookingID, model.SeatStatusReleased); err != nil {
		return fmt.Errorf("release seats for booking %d: %w", bookingID, err)
	}
	return nil
}

// SeatNumbersForBooking returns the seat numbers attached to a
// booking in insertion order.  Empty for general-admission bookings.
func (s *Store) SeatNumbersForBooking(ctx context.Context, bookingID uint64) ([]string, error) {
	const q = `SELECT seat_number FROM seat_reservations WHERE booking_id = ? ORDER BY id`
	rows, err := s.q(ctx).QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := []string{}
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}
