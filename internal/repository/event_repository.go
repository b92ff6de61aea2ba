package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// GetEvent returns a single event by ID.  It returns
// model.ErrEventNotFound when the row does not exist.
func (s *Store) GetEvent(ctx context.Context, eventID uint64) (*model.Event, error) {
	const q = `SELECT id, name, venue_name, status, numbered_seating,
                      booking_opens_at, booking_closes_at, starts_at, created_at
               FROM events WHERE id = ?`
	var ev model.Event
	err := s.q(ctx).QueryRowContext(ctx, q, eventID).Scan(
		&ev.ID, &ev.Name, &ev.VenueName, &ev.Status, &ev.NumberedSeating,
		&ev.BookingOpensAt, &ev.BookingClosesAt, &ev.StartsAt, &ev.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}
