package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticket-booking/internal/clock"
	"github.com/iliyamo/event-ticket-booking/internal/model"
)

func newWaitlistEnv(t *testing.T) (*WaitlistService, *fakeStore, *clock.Fixed) {
	t.Helper()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)

	store := newFakeStore()
	store.events[1] = &model.Event{ID: 1, Name: "Summer Festival", Status: model.EventStatusPublished}
	store.tiers[1] = &model.PriceTier{ID: 1, EventID: 1, Name: "GA", TotalSeats: 50, AvailableSeats: 0}
	store.tiers[2] = &model.PriceTier{ID: 2, EventID: 1, Name: "VIP", TotalSeats: 10, AvailableSeats: 0}

	return NewWaitlistService(store, clk), store, clk
}

func TestWaitlistJoin_SoldOut(t *testing.T) {
	svc, _, clk := newWaitlistEnv(t)

	entry, err := svc.Join(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, model.WaitlistStatusWaiting, entry.Status)
	assert.Equal(t, clk.Now(), entry.JoinedAt)

	_, err = svc.Join(context.Background(), 1, 7)
	require.ErrorIs(t, err, model.ErrAlreadyWaitlisted)
}

func TestWaitlistJoin_DuplicateDespiteStaleCheck(t *testing.T) {
	svc, store, _ := newWaitlistEnv(t)

	_, err := svc.Join(context.Background(), 1, 7)
	require.NoError(t, err)

	// Two concurrent joins can both pass the membership pre-check
	// when the second one's snapshot predates the first commit.  The
	// active-entry uniqueness guard at insert time keeps the second
	// row out.
	store.staleReads = true
	_, err = svc.Join(context.Background(), 1, 7)
	require.ErrorIs(t, err, model.ErrAlreadyWaitlisted)

	pos, err := svc.Position(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.Len(t, store.waitlist, 1)
}

func TestWaitlistJoin_SeatsStillAvailable(t *testing.T) {
	svc, store, _ := newWaitlistEnv(t)
	store.tiers[2].AvailableSeats = 1

	_, err := svc.Join(context.Background(), 1, 7)
	require.ErrorIs(t, err, model.ErrConflict)
}

func TestWaitlistJoin_UnknownEvent(t *testing.T) {
	svc, _, _ := newWaitlistEnv(t)

	_, err := svc.Join(context.Background(), 404, 7)
	require.ErrorIs(t, err, model.ErrEventNotFound)
}

func TestWaitlistPosition_Ordering(t *testing.T) {
	svc, _, clk := newWaitlistEnv(t)

	for _, userID := range []uint64{7, 8, 9} {
		_, err := svc.Join(context.Background(), 1, userID)
		require.NoError(t, err)
		clk.Advance(time.Second)
	}

	pos, err := svc.Position(context.Background(), 1, 8)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	// When the head leaves, everyone behind moves up.
	require.NoError(t, svc.Leave(context.Background(), 1, 7))
	pos, err = svc.Position(context.Background(), 1, 8)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
}

func TestWaitlistLeave_NotWaiting(t *testing.T) {
	svc, _, _ := newWaitlistEnv(t)

	err := svc.Leave(context.Background(), 1, 7)
	require.ErrorIs(t, err, model.ErrNotWaitlisted)

	_, err = svc.Position(context.Background(), 1, 7)
	require.ErrorIs(t, err, model.ErrNotWaitlisted)
}

func TestWaitlistLeave_Twice(t *testing.T) {
	svc, _, _ := newWaitlistEnv(t)

	_, err := svc.Join(context.Background(), 1, 7)
	require.NoError(t, err)

	require.NoError(t, svc.Leave(context.Background(), 1, 7))
	require.ErrorIs(t, svc.Leave(context.Background(), 1, 7), model.ErrNotWaitlisted)
}
