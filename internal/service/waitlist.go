package service

import (
	"context"
	"time"

	"github.com/iliyamo/event-ticket-booking/internal/clock"
	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// WaitlistStore is the persistence surface WaitlistService needs.
type WaitlistStore interface {
	GetEvent(ctx context.Context, eventID uint64) (*model.Event, error)
	ListTierAvailability(ctx context.Context, eventID uint64) ([]model.TierAvailability, error)
	HasWaitingEntry(ctx context.Context, eventID, userID uint64) (bool, error)
	CreateWaitlistEntry(ctx context.Context, eventID, userID uint64, now time.Time) (*model.WaitlistEntry, error)
	CancelWaitlistEntry(ctx context.Context, eventID, userID uint64, now time.Time) (bool, error)
	WaitlistPosition(ctx context.Context, eventID, userID uint64) (int, error)
}

// WaitlistService lets users queue for sold-out events.  Joining is
// only allowed once every tier of the event is at zero availability;
// a user holds at most one WAITING entry per event.
type WaitlistService struct {
	store WaitlistStore
	clock clock.Clock
}

// NewWaitlistService constructs a WaitlistService.
func NewWaitlistService(store WaitlistStore, clk clock.Clock) *WaitlistService {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &WaitlistService{store: store, clock: clk}
}

// Join adds the user to the event's waitlist.  Returns ErrConflict
// when seats are still available and ErrAlreadyWaitlisted when the
// user is already waiting.
func (s *WaitlistService) Join(ctx context.Context, eventID, userID uint64) (*model.WaitlistEntry, error) {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	tiers, err := s.store.ListTierAvailability(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for _, t := range tiers {
		if t.AvailableSeats > 0 {
			return nil, model.ErrConflict
		}
	}
	waiting, err := s.store.HasWaitingEntry(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if waiting {
		return nil, model.ErrAlreadyWaitlisted
	}
	return s.store.CreateWaitlistEntry(ctx, eventID, userID, s.clock.Now())
}

// Leave cancels the user's WAITING entry.  Returns ErrNotWaitlisted
// when the user has no active entry.
func (s *WaitlistService) Leave(ctx context.Context, eventID, userID uint64) error {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return err
	}
	ok, err := s.store.CancelWaitlistEntry(ctx, eventID, userID, s.clock.Now())
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrNotWaitlisted
	}
	return nil
}

// Position returns the user's 1-based place in the queue.
func (s *WaitlistService) Position(ctx context.Context, eventID, userID uint64) (int, error) {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return 0, err
	}
	pos, err := s.store.WaitlistPosition(ctx, eventID, userID)
	if err != nil {
		return 0, err
	}
	if pos == 0 {
		return 0, model.ErrNotWaitlisted
	}
	return pos, nil
}
