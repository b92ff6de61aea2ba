package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

const bookingColumns = `id, reference, user_id, event_id, tier_id, num_tickets,
       total_amount_cents, status, payment_status, payment_txn_id,
       created_at, expires_at, confirmed_at`

// CreateBooking inserts a new booking row and populates the generated
// ID on the passed value.  It is expected to run inside WithTx next to
// the tier debit and seat holds that belong to the same atomic unit.
func (s *Store) CreateBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings
               (reference, user_id, event_id, tier_id, num_tickets, total_amount_cents,
                status, payment_status, created_at, expires_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.q(ctx).ExecContext(ctx, q,
		b.Reference, b.UserID, b.EventID, b.TierID, b.NumTickets, b.TotalAmountCents,
		b.Status, b.PaymentStatus, b.CreatedAt, b.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetBooking returns a booking by ID with its seat numbers populated.
// Returns model.ErrBookingNotFound when no row exists.
func (s *Store) GetBooking(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	return s.getBookingWhere(ctx, "id = ?", bookingID)
}

// GetBookingByReference returns a booking by its human-presentable
// reference code.
func (s *Store) GetBookingByReference(ctx context.Context, reference string) (*model.Booking, error) {
	return s.getBookingWhere(ctx, "reference = ?", reference)
}

// GetBookingForUpdate loads a booking under an exclusive row lock.
// Must be called inside WithTx; used by transitions that first inspect
// the current state (deadline, ownership) before mutating it.
func (s *Store) GetBookingForUpdate(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	return s.getBookingWhere(ctx, "id = ? FOR UPDATE", bookingID)
}

func (s *Store) getBookingWhere(ctx context.Context, where string, arg any) (*model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + where
	var b model.Booking
	err := s.q(ctx).QueryRowContext(ctx, q, arg).Scan(
		&b.ID, &b.Reference, &b.UserID, &b.EventID, &b.TierID, &b.NumTickets,
		&b.TotalAmountCents, &b.Status, &b.PaymentStatus, &b.PaymentTxnID,
		&b.CreatedAt, &b.ExpiresAt, &b.ConfirmedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	seats, err := s.SeatNumbersForBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.SeatNumbers = seats
	return &b, nil
}

// MarkConfirmed performs the status-guarded PENDING_PAYMENT->CONFIRMED
// update.  It reports false when the guard did not match, meaning some
// other transition (expiry, a duplicate confirm) won the race.
func (s *Store) MarkConfirmed(ctx context.Context, bookingID uint64, paymentTxnID string, now time.Time) (bool, error) {
	const q = `UPDATE bookings
               SET status = ?, payment_status = ?, payment_txn_id = ?, confirmed_at = ?
               WHERE id = ? AND status = ?`
	res, err := s.q(ctx).ExecContext(ctx, q,
		model.BookingStatusConfirmed, model.PaymentStatusSuccess, paymentTxnID, now,
		bookingID, model.BookingStatusPendingPayment,
	)
	if err != nil {
		return false, fmt.Errorf("confirm booking %d: %w", bookingID, err)
	}
	return oneRow(res)
}

// MarkExpired performs the status-guarded PENDING_PAYMENT->EXPIRED
// update.  The guard makes the transition execute at most once even
// when the sweeper and a late confirmation race on the same booking.
func (s *Store) MarkExpired(ctx context.Context, bookingID uint64) (bool, error) {
	const q = `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`
	res, err := s.q(ctx).ExecContext(ctx, q,
		model.BookingStatusExpired, bookingID, model.BookingStatusPendingPayment,
	)
	if err != nil {
		return false, fmt.Errorf("expire booking %d: %w", bookingID, err)
	}
	return oneRow(res)
}

// MarkCancelled performs the status-guarded CONFIRMED->CANCELLED
// update.
func (s *Store) MarkCancelled(ctx context.Context, bookingID uint64) (bool, error) {
	const q = `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`
	res, err := s.q(ctx).ExecContext(ctx, q,
		model.BookingStatusCancelled, bookingID, model.BookingStatusConfirmed,
	)
	if err != nil {
		return false, fmt.Errorf("cancel booking %d: %w", bookingID, err)
	}
	return oneRow(res)
}

func oneRow(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListExpiredBookings returns pending bookings whose deadline has
// passed, oldest first, capped at limit.  Each returned booking is
// expired independently by the sweeper.
func (s *Store) ListExpiredBookings(ctx context.Context, now time.Time, limit int) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings
          WHERE status = ? AND expires_at < ?
          ORDER BY expires_at LIMIT ?`
	rows, err := s.q(ctx).QueryContext(ctx, q, model.BookingStatusPendingPayment, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(
			&b.ID, &b.Reference, &b.UserID, &b.EventID, &b.TierID, &b.NumTickets,
			&b.TotalAmountCents, &b.Status, &b.PaymentStatus, &b.PaymentTxnID,
			&b.CreatedAt, &b.ExpiresAt, &b.ConfirmedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListBookingsByUser returns all bookings for a user, newest first,
// with seat numbers populated in a single follow-up query.
func (s *Store) ListBookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings
          WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := s.q(ctx).QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]model.Booking, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(
			&b.ID, &b.Reference, &b.UserID, &b.EventID, &b.TierID, &b.NumTickets,
			&b.TotalAmountCents, &b.Status, &b.PaymentStatus, &b.PaymentTxnID,
			&b.CreatedAt, &b.ExpiresAt, &b.ConfirmedAt,
		); err != nil {
			return nil, err
		}
		b.SeatNumbers = []string{}
		index[b.ID] = len(bookings)
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return bookings, nil
	}
	ids := make([]any, 0, len(bookings))
	placeholders := make([]string, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
		placeholders = append(placeholders, "?")
	}
	seatQ := `SELECT booking_id, seat_number FROM seat_reservations
              WHERE booking_id IN (` + strings.Join(placeholders, ",") + `)
              ORDER BY booking_id, id`
	srows, err := s.q(ctx).QueryContext(ctx, seatQ, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var bid uint64
		var seat string
		if err := srows.Scan(&bid, &seat); err != nil {
			return nil, err
		}
		if i, ok := index[bid]; ok {
			bookings[i].SeatNumbers = append(bookings[i].SeatNumbers, seat)
		}
	}
	return bookings, srows.Err()
}
