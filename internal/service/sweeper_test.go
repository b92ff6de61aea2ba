package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

func TestSweepOnce_ExpiresOverdueOnly(t *testing.T) {
	svc, store, _, clk := newBookingEnv(t)

	overdue, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		UserID: 1, EventID: 1, TierID: 1, NumTickets: 2,
	})
	require.NoError(t, err)

	clk.Advance(5 * time.Minute)
	fresh, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		UserID: 2, EventID: 1, TierID: 1, NumTickets: 1,
	})
	require.NoError(t, err)

	confirmed, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		UserID: 3, EventID: 1, TierID: 1, NumTickets: 1,
	})
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(context.Background(), confirmed.ID, "pay-1")
	require.NoError(t, err)

	// Past the first booking's deadline, before the second's.
	clk.Advance(6 * time.Minute)

	sweeper := NewSweeper(store, svc, clk, time.Minute)
	sweeper.SweepOnce(context.Background())

	get := func(id uint64) string {
		b, err := store.GetBooking(context.Background(), id)
		require.NoError(t, err)
		return b.Status
	}
	assert.Equal(t, model.BookingStatusExpired, get(overdue.ID))
	assert.Equal(t, model.BookingStatusPendingPayment, get(fresh.ID))
	assert.Equal(t, model.BookingStatusConfirmed, get(confirmed.ID))

	// Only the expired booking's two seats came back.
	assert.Equal(t, 98, store.tierAvailable(1))
}

func TestSweepOnce_Idempotent(t *testing.T) {
	svc, store, _, clk := newBookingEnv(t)

	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		UserID: 1, EventID: 1, TierID: 1, NumTickets: 4,
	})
	require.NoError(t, err)
	clk.Advance(testGrace + time.Minute)

	sweeper := NewSweeper(store, svc, clk, time.Minute)
	sweeper.SweepOnce(context.Background())
	sweeper.SweepOnce(context.Background())

	assert.Equal(t, 100, store.tierAvailable(1))
}

func TestSweeperRun_StopsOnCancel(t *testing.T) {
	svc, store, _, clk := newBookingEnv(t)
	sweeper := NewSweeper(store, svc, clk, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
