package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// CreateTransaction appends an audit row for a booking transition.  A
// fresh uuid reference is assigned when the caller left it empty.
// Rows are append-only; nothing ever updates or deletes them.
func (s *Store) CreateTransaction(ctx context.Context, t *model.Transaction) error {
	if t.Reference == "" {
		t.Reference = uuid.NewString()
	}
	const q = `INSERT INTO transactions (reference, user_id, booking_id, type, amount_cents, status)
               VALUES (?, ?, ?, ?, ?, ?)`
	res, err := s.q(ctx).ExecContext(ctx, q,
		t.Reference, t.UserID, t.BookingID, t.Type, t.AmountCents, t.Status)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}
