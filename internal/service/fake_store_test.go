package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// fakeStore is an in-memory BookingStore, SweeperStore, WaitlistStore
// and AvailabilityStore.  WithTx serialises callers on a mutex and
// restores a snapshot when the callback fails, which mirrors the
// all-or-nothing contract of the real transactional store closely
// enough to exercise every transition path.
type fakeStore struct {
	mu sync.Mutex

	events       map[uint64]*model.Event
	tiers        map[uint64]*model.PriceTier
	bookings     map[uint64]*model.Booking
	seats        []model.SeatReservation
	transactions []model.Transaction
	waitlist     []model.WaitlistEntry

	nextBookingID  uint64
	nextSeatID     uint64
	nextWaitlistID uint64

	// staleReads makes the existence pre-checks (SeatTaken,
	// HasWaitingEntry) miss rows other transactions committed, the way
	// a repeatable-read snapshot established before those commits
	// would.  The insert-time uniqueness guards must still catch the
	// duplicate.
	staleReads bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:   make(map[uint64]*model.Event),
		tiers:    make(map[uint64]*model.PriceTier),
		bookings: make(map[uint64]*model.Booking),
	}
}

type fakeTxKey struct{}

// enter acquires the store mutex unless the context already runs
// inside WithTx, which holds it for the whole transaction.
func (s *fakeStore) enter(ctx context.Context) func() {
	if ctx.Value(fakeTxKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, fakeTxKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type fakeSnapshot struct {
	tiers          map[uint64]*model.PriceTier
	bookings       map[uint64]*model.Booking
	seats          []model.SeatReservation
	transactions   []model.Transaction
	waitlist       []model.WaitlistEntry
	nextBookingID  uint64
	nextSeatID     uint64
	nextWaitlistID uint64
}

func (s *fakeStore) snapshot() fakeSnapshot {
	snap := fakeSnapshot{
		tiers:          make(map[uint64]*model.PriceTier, len(s.tiers)),
		bookings:       make(map[uint64]*model.Booking, len(s.bookings)),
		seats:          append([]model.SeatReservation(nil), s.seats...),
		transactions:   append([]model.Transaction(nil), s.transactions...),
		waitlist:       append([]model.WaitlistEntry(nil), s.waitlist...),
		nextBookingID:  s.nextBookingID,
		nextSeatID:     s.nextSeatID,
		nextWaitlistID: s.nextWaitlistID,
	}
	for id, t := range s.tiers {
		cp := *t
		snap.tiers[id] = &cp
	}
	for id, b := range s.bookings {
		cp := *b
		snap.bookings[id] = &cp
	}
	return snap
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.tiers = snap.tiers
	s.bookings = snap.bookings
	s.seats = snap.seats
	s.transactions = snap.transactions
	s.waitlist = snap.waitlist
	s.nextBookingID = snap.nextBookingID
	s.nextSeatID = snap.nextSeatID
	s.nextWaitlistID = snap.nextWaitlistID
}

func (s *fakeStore) GetEvent(ctx context.Context, eventID uint64) (*model.Event, error) {
	defer s.enter(ctx)()
	ev, ok := s.events[eventID]
	if !ok {
		return nil, model.ErrEventNotFound
	}
	cp := *ev
	return &cp, nil
}

func (s *fakeStore) GetTierForUpdate(ctx context.Context, tierID uint64) (*model.PriceTier, error) {
	defer s.enter(ctx)()
	t, ok := s.tiers[tierID]
	if !ok {
		return nil, model.ErrTierNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeStore) DebitTier(ctx context.Context, tierID uint64, qty int) error {
	defer s.enter(ctx)()
	t, ok := s.tiers[tierID]
	if !ok || t.AvailableSeats < qty {
		return model.ErrInsufficientSeats
	}
	t.AvailableSeats -= qty
	return nil
}

func (s *fakeStore) CreditTier(ctx context.Context, tierID uint64, qty int) error {
	defer s.enter(ctx)()
	t, ok := s.tiers[tierID]
	if !ok {
		return model.ErrTierNotFound
	}
	t.AvailableSeats += qty
	if t.AvailableSeats > t.TotalSeats {
		t.AvailableSeats = t.TotalSeats
	}
	return nil
}

func (s *fakeStore) ListTierAvailability(ctx context.Context, eventID uint64) ([]model.TierAvailability, error) {
	defer s.enter(ctx)()
	out := make([]model.TierAvailability, 0)
	for _, t := range s.tiers {
		if t.EventID != eventID {
			continue
		}
		out = append(out, model.TierAvailability{
			TierID:         t.ID,
			Name:           t.Name,
			PriceCents:     t.PriceCents,
			TotalSeats:     t.TotalSeats,
			AvailableSeats: t.AvailableSeats,
		})
	}
	return out, nil
}

func (s *fakeStore) SeatTaken(ctx context.Context, eventID uint64, seatNumber string) (bool, error) {
	defer s.enter(ctx)()
	if s.staleReads {
		return false, nil
	}
	for _, sr := range s.seats {
		if sr.EventID == eventID && sr.SeatNumber == seatNumber &&
			(sr.Status == model.SeatStatusHeld || sr.Status == model.SeatStatusConfirmed) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CreateSeatReservations(ctx context.Context, eventID, bookingID uint64, seatNumbers []string) error {
	defer s.enter(ctx)()
	// Mirror of the unique live-claim index: at most one HELD or
	// CONFIRMED row per (event, seat), regardless of what any earlier
	// read reported.
	for _, seat := range seatNumbers {
		for _, sr := range s.seats {
			if sr.EventID == eventID && sr.SeatNumber == seat &&
				(sr.Status == model.SeatStatusHeld || sr.Status == model.SeatStatusConfirmed) {
				return fmt.Errorf("seat already claimed: %w", model.ErrSeatConflict)
			}
		}
	}
	for _, seat := range seatNumbers {
		s.nextSeatID++
		s.seats = append(s.seats, model.SeatReservation{
			ID:         s.nextSeatID,
			EventID:    eventID,
			BookingID:  bookingID,
			SeatNumber: seat,
			Status:     model.SeatStatusHeld,
		})
	}
	return nil
}

func (s *fakeStore) ConfirmSeatReservations(ctx context.Context, bookingID uint64) error {
	defer s.enter(ctx)()
	for i := range s.seats {
		if s.seats[i].BookingID == bookingID && s.seats[i].Status == model.SeatStatusHeld {
			s.seats[i].Status = model.SeatStatusConfirmed
		}
	}
	return nil
}

func (s *fakeStore) ReleaseSeatReservations(ctx context.Context, bookingID uint64) error {
	defer s.enter(ctx)()
	for i := range s.seats {
		if s.seats[i].BookingID == bookingID && s.seats[i].Status != model.SeatStatusReleased {
			s.seats[i].Status = model.SeatStatusReleased
		}
	}
	return nil
}

func (s *fakeStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	defer s.enter(ctx)()
	s.nextBookingID++
	b.ID = s.nextBookingID
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *fakeStore) GetBooking(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	defer s.enter(ctx)()
	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, model.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *fakeStore) GetBookingByReference(ctx context.Context, reference string) (*model.Booking, error) {
	defer s.enter(ctx)()
	for _, b := range s.bookings {
		if b.Reference == reference {
			cp := *b
			return &cp, nil
		}
	}
	return nil, model.ErrBookingNotFound
}

func (s *fakeStore) GetBookingForUpdate(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	return s.GetBooking(ctx, bookingID)
}

func (s *fakeStore) ListBookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	defer s.enter(ctx)()
	out := make([]model.Booking, 0)
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkConfirmed(ctx context.Context, bookingID uint64, paymentTxnID string, now time.Time) (bool, error) {
	defer s.enter(ctx)()
	b, ok := s.bookings[bookingID]
	if !ok || b.Status != model.BookingStatusPendingPayment {
		return false, nil
	}
	b.Status = model.BookingStatusConfirmed
	b.PaymentStatus = model.PaymentStatusSuccess
	b.PaymentTxnID = &paymentTxnID
	t := now
	b.ConfirmedAt = &t
	return true, nil
}

func (s *fakeStore) MarkExpired(ctx context.Context, bookingID uint64) (bool, error) {
	defer s.enter(ctx)()
	b, ok := s.bookings[bookingID]
	if !ok || b.Status != model.BookingStatusPendingPayment {
		return false, nil
	}
	b.Status = model.BookingStatusExpired
	return true, nil
}

func (s *fakeStore) MarkCancelled(ctx context.Context, bookingID uint64) (bool, error) {
	defer s.enter(ctx)()
	b, ok := s.bookings[bookingID]
	if !ok || b.Status != model.BookingStatusConfirmed {
		return false, nil
	}
	b.Status = model.BookingStatusCancelled
	return true, nil
}

func (s *fakeStore) ListExpiredBookings(ctx context.Context, now time.Time, limit int) ([]model.Booking, error) {
	defer s.enter(ctx)()
	out := make([]model.Booking, 0)
	for _, b := range s.bookings {
		if b.Status == model.BookingStatusPendingPayment && b.ExpiresAt.Before(now) {
			out = append(out, *b)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *fakeStore) CreateTransaction(ctx context.Context, t *model.Transaction) error {
	defer s.enter(ctx)()
	if t.Reference == "" {
		t.Reference = "txn"
	}
	t.ID = uint64(len(s.transactions) + 1)
	s.transactions = append(s.transactions, *t)
	return nil
}

func (s *fakeStore) HasWaitingEntry(ctx context.Context, eventID, userID uint64) (bool, error) {
	defer s.enter(ctx)()
	if s.staleReads {
		return false, nil
	}
	for _, w := range s.waitlist {
		if w.EventID == eventID && w.UserID == userID && w.Status == model.WaitlistStatusWaiting {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CreateWaitlistEntry(ctx context.Context, eventID, userID uint64, now time.Time) (*model.WaitlistEntry, error) {
	defer s.enter(ctx)()
	// Mirror of the unique active-entry index: one WAITING row per
	// (event, user).
	for _, w := range s.waitlist {
		if w.EventID == eventID && w.UserID == userID && w.Status == model.WaitlistStatusWaiting {
			return nil, model.ErrAlreadyWaitlisted
		}
	}
	s.nextWaitlistID++
	entry := model.WaitlistEntry{
		ID:       s.nextWaitlistID,
		EventID:  eventID,
		UserID:   userID,
		Status:   model.WaitlistStatusWaiting,
		JoinedAt: now,
	}
	s.waitlist = append(s.waitlist, entry)
	return &entry, nil
}

func (s *fakeStore) CancelWaitlistEntry(ctx context.Context, eventID, userID uint64, now time.Time) (bool, error) {
	defer s.enter(ctx)()
	for i := range s.waitlist {
		w := &s.waitlist[i]
		if w.EventID == eventID && w.UserID == userID && w.Status == model.WaitlistStatusWaiting {
			w.Status = model.WaitlistStatusCancelled
			t := now
			w.CancelledAt = &t
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) WaitlistPosition(ctx context.Context, eventID, userID uint64) (int, error) {
	defer s.enter(ctx)()
	var mine *model.WaitlistEntry
	for i := range s.waitlist {
		w := &s.waitlist[i]
		if w.EventID == eventID && w.UserID == userID && w.Status == model.WaitlistStatusWaiting {
			mine = w
			break
		}
	}
	if mine == nil {
		return 0, nil
	}
	pos := 0
	for _, w := range s.waitlist {
		if w.EventID == eventID && w.Status == model.WaitlistStatusWaiting && !w.JoinedAt.After(mine.JoinedAt) {
			pos++
		}
	}
	return pos, nil
}

// tierAvailable reads a tier counter outside any transaction.
func (s *fakeStore) tierAvailable(tierID uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tiers[tierID].AvailableSeats
}
