package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// GetTierForUpdate loads a price tier under an exclusive row lock.
// It must be called inside WithTx; the lock serialises every
// concurrent debit against the same tier until the transaction
// commits.  Returns model.ErrTierNotFound when the row does not exist.
func (s *Store) GetTierForUpdate(ctx context.Context, tierID uint64) (*model.PriceTier, error) {
	const q = `SELECT id, event_id, name, price_cents, total_seats, available_seats, created_at
               FROM price_tiers WHERE id = ? FOR UPDATE`
	return s.scanTier(s.q(ctx).QueryRowContext(ctx, q, tierID))
}

// GetTier loads a price tier without locking, for display reads.
func (s *Store) GetTier(ctx context.Context, tierID uint64) (*model.PriceTier, error) {
	const q = `SELECT id, event_id, name, price_cents, total_seats, available_seats, created_at
               FROM price_tiers WHERE id = ?`
	return s.scanTier(s.q(ctx).QueryRowContext(ctx, q, tierID))
}

func (s *Store) scanTier(row *sql.Row) (*model.PriceTier, error) {
	var t model.PriceTier
	err := row.Scan(&t.ID, &t.EventID, &t.Name, &t.PriceCents, &t.TotalSeats, &t.AvailableSeats, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrTierNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DebitTier atomically decrements a tier's available counter by qty.
// The check and the decrement are a single guarded UPDATE: when the
// counter cannot cover qty, zero rows match, nothing is mutated and
// model.ErrInsufficientSeats is returned.
func (s *Store) DebitTier(ctx context.Context, tierID uint64, qty int) error {
	const q = `UPDATE price_tiers
               SET available_seats = available_seats - ?
               WHERE id = ? AND available_seats >= ?`
	res, err := s.q(ctx).ExecContext(ctx, q, qty, tierID, qty)
	if err != nil {
		return fmt.Errorf("debit tier %d: %w", tierID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrInsufficientSeats
	}
	return nil
}

// CreditTier returns qty seats to the tier's available counter.  The
// caller (the booking state machine) guarantees the credit is issued
// exactly once per matching debit, so no guard beyond the schema's
// CHECK constraint is applied here.
func (s *Store) CreditTier(ctx context.Context, tierID uint64, qty int) error {
	const q = `UPDATE price_tiers SET available_seats = available_seats + ? WHERE id = ?`
	if _, err := s.q(ctx).ExecContext(ctx, q, qty, tierID); err != nil {
		return fmt.Errorf("credit tier %d: %w", tierID, err)
	}
	return nil
}

// ListTierAvailability returns the availability projection for all
// tiers of an event, ordered by price.  Reads are not locked; catalog
// display tolerates slightly stale counters.
func (s *Store) ListTierAvailability(ctx context.Context, eventID uint64) ([]model.TierAvailability, error) {
	const q = `SELECT id, name, price_cents, total_seats, available_seats
               FROM price_tiers WHERE event_id = ? ORDER BY price_cents`
	rows, err := s.q(ctx).QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TierAvailability, 0)
	for rows.Next() {
		var t model.TierAvailability
		if err := rows.Scan(&t.TierID, &t.Name, &t.PriceCents, &t.TotalSeats, &t.AvailableSeats); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
