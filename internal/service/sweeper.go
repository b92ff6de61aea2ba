package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/event-ticket-booking/internal/clock"
	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// SweeperStore lists the overdue pending bookings a sweep pass should
// reclaim.
type SweeperStore interface {
	ListExpiredBookings(ctx context.Context, now time.Time, limit int) ([]model.Booking, error)
}

// bookingExpirer is the single transition the sweeper drives; it is
// the same status-guarded path a lazy expire uses, so a second sweeper
// instance or a racing confirmation is harmless.
type bookingExpirer interface {
	ExpireBooking(ctx context.Context, bookingID uint64) error
}

// Sweeper periodically reclaims inventory held by bookings whose
// payment deadline has passed.  The deadline lives in the database,
// not in an in-memory timer, so pending bookings survive a restart and
// are picked up by the next pass.
type Sweeper struct {
	store    SweeperStore
	bookings bookingExpirer
	clock    clock.Clock
	interval time.Duration
	batch    int
}

const (
	defaultSweepInterval = time.Minute
	defaultSweepBatch    = 100
)

// NewSweeper constructs a Sweeper.  interval <= 0 selects the default
// one-minute cadence.
func NewSweeper(store SweeperStore, bookings bookingExpirer, clk clock.Clock, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Sweeper{
		store:    store,
		bookings: bookings,
		clock:    clk,
		interval: interval,
		batch:    defaultSweepBatch,
	}
}

// Run executes sweep passes on a fixed interval until the context is
// cancelled.  Intended to be launched as a goroutine from main.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("sweeper: started, interval=%s", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("sweeper: stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce expires every overdue pending booking it can find, at most
// one batch worth.  Individual failures are logged and skipped so one
// bad row cannot block the sweep; a booking someone else transitioned
// first is silently left alone.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	overdue, err := s.store.ListExpiredBookings(ctx, s.clock.Now(), s.batch)
	if err != nil {
		log.Printf("sweeper: listing expired bookings failed: %v", err)
		return
	}
	if len(overdue) == 0 {
		return
	}

	expired := 0
	for _, b := range overdue {
		if err := s.bookings.ExpireBooking(ctx, b.ID); err != nil {
			if errors.Is(err, model.ErrInvalidState) {
				// Lost the race against a confirmation or another
				// sweeper; the winner handled the booking.
				continue
			}
			log.Printf("sweeper: expiring booking %s failed: %v", b.Reference, err)
			continue
		}
		expired++
	}
	log.Printf("sweeper: expired %d of %d overdue bookings", expired, len(overdue))
}
