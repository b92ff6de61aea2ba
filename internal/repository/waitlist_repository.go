package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// HasWaitingEntry reports whether the user already has a WAITING
// waitlist entry for the event.
func (s *Store) HasWaitingEntry(ctx context.Context, eventID, userID uint64) (bool, error) {
	const q = `SELECT EXISTS (
                   SELECT 1 FROM waitlist WHERE event_id = ? AND user_id = ? AND status = ?
               )`
	var exists bool
	err := s.q(ctx).QueryRowContext(ctx, q, eventID, userID, model.WaitlistStatusWaiting).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check waitlist entry: %w", err)
	}
	return exists, nil
}

// CreateWaitlistEntry appends a WAITING entry for the user.  The
// unique active-entry index admits one WAITING row per (event, user);
// a concurrent duplicate join loses the insert race and gets
// model.ErrAlreadyWaitlisted even when its earlier existence check
// read a snapshot that predated the winner.
func (s *Store) CreateWaitlistEntry(ctx context.Context, eventID, userID uint64, now time.Time) (*model.WaitlistEntry, error) {
	const q = `INSERT INTO waitlist (event_id, user_id, status, joined_at) VALUES (?, ?, ?, ?)`
	res, err := s.q(ctx).ExecContext(ctx, q, eventID, userID, model.WaitlistStatusWaiting, now)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, model.ErrAlreadyWaitlisted
		}
		return nil, fmt.Errorf("insert waitlist entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.WaitlistEntry{
		ID:       uint64(id),
		EventID:  eventID,
		UserID:   userID,
		Status:   model.WaitlistStatusWaiting,
		JoinedAt: now,
	}, nil
}

// CancelWaitlistEntry marks the user's WAITING entry as CANCELLED.
// Reports false when no waiting entry existed.
func (s *Store) CancelWaitlistEntry(ctx context.Context, eventID, userID uint64, now time.Time) (bool, error) {
	const q = `UPDATE waitlist SET status = ?, cancelled_at = ?
               WHERE event_id = ? AND user_id = ? AND status = ?`
	res, err := s.q(ctx).ExecContext(ctx, q,
		model.WaitlistStatusCancelled, now, eventID, userID, model.WaitlistStatusWaiting)
	if err != nil {
		return false, fmt.Errorf("cancel waitlist entry: %w", err)
	}
	return oneRow(res)
}

// WaitlistPosition returns the user's 1-based position among WAITING
// entries for the event, ordered by join time.  Position 0 means the
// user is not waiting.
func (s *Store) WaitlistPosition(ctx context.Context, eventID, userID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM waitlist w
               JOIN waitlist mine
                 ON mine.event_id = w.event_id AND mine.user_id = ? AND mine.status = ?
               WHERE w.event_id = ? AND w.status = ? AND w.joined_at <= mine.joined_at`
	var pos int
	err := s.q(ctx).QueryRowContext(ctx, q,
		userID, model.WaitlistStatusWaiting, eventID, model.WaitlistStatusWaiting).Scan(&pos)
	if err != nil {
		return 0, fmt.Errorf("waitlist position: %w", err)
	}
	return pos, nil
}
