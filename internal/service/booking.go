// Package service implements the booking state machine, the expiry
// sweeper, the availability read side and the waitlist.  Each service
// depends on a narrow store interface satisfied by *repository.Store
// so the transition logic can be exercised against an in-memory fake.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/event-ticket-booking/internal/clock"
	"github.com/iliyamo/event-ticket-booking/internal/model"
	"github.com/iliyamo/event-ticket-booking/internal/queue"
	"github.com/iliyamo/event-ticket-booking/internal/utils"
)

// BookingStore is the persistence surface the state machine needs.
// WithTx must provide all-or-nothing semantics: when the callback
// returns an error, none of the writes issued through the same
// context may survive.
type BookingStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	GetEvent(ctx context.Context, eventID uint64) (*model.Event, error)

	GetTierForUpdate(ctx context.Context, tierID uint64) (*model.PriceTier, error)
	DebitTier(ctx context.Context, tierID uint64, qty int) error
	CreditTier(ctx context.Context, tierID uint64, qty int) error

	SeatTaken(ctx context.Context, eventID uint64, seatNumber string) (bool, error)
	CreateSeatReservations(ctx context.Context, eventID, bookingID uint64, seatNumbers []string) error
	ConfirmSeatReservations(ctx context.Context, bookingID uint64) error
	ReleaseSeatReservations(ctx context.Context, bookingID uint64) error

	CreateBooking(ctx context.Context, b *model.Booking) error
	GetBooking(ctx context.Context, bookingID uint64) (*model.Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*model.Booking, error)
	GetBookingForUpdate(ctx context.Context, bookingID uint64) (*model.Booking, error)
	ListBookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	MarkConfirmed(ctx context.Context, bookingID uint64, paymentTxnID string, now time.Time) (bool, error)
	MarkExpired(ctx context.Context, bookingID uint64) (bool, error)
	MarkCancelled(ctx context.Context, bookingID uint64) (bool, error)

	CreateTransaction(ctx context.Context, t *model.Transaction) error
}

// EventPublisher sends lifecycle messages to the excluded
// collaborators (ticket generation, refund notification, waitlist
// promotion).  Publishing happens after the database transaction has
// committed and failures are logged, never propagated to the caller.
type EventPublisher interface {
	BookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
	BookingCancelled(ctx context.Context, ev queue.BookingCancelledEvent) error
	SeatsReleased(ctx context.Context, ev queue.SeatsReleasedEvent) error
}

// availabilityInvalidator drops cached availability for an event after
// a transition changed its counters.
type availabilityInvalidator interface {
	Invalidate(ctx context.Context, eventID uint64)
}

// BookingService owns the booking lifecycle.  Every transition runs as
// a single transaction; the tier row lock taken inside serialises
// concurrent debits, and the status-guarded updates make each
// transition execute exactly once.
type BookingService struct {
	store     BookingStore
	clock     clock.Clock
	publisher EventPublisher          // optional
	cache     availabilityInvalidator // optional
	grace     time.Duration
}

const defaultBookingGrace = 10 * time.Minute

// NewBookingService constructs a BookingService.  publisher and cache
// may be nil; grace <= 0 selects the default 10 minute window.
func NewBookingService(store BookingStore, clk clock.Clock, publisher EventPublisher, cache availabilityInvalidator, grace time.Duration) *BookingService {
	if grace <= 0 {
		grace = defaultBookingGrace
	}
	return &BookingService{
		store:     store,
		clock:     clk,
		publisher: publisher,
		cache:     cache,
		grace:     grace,
	}
}

// CreateBookingInput carries the parameters of a purchase request.
// SeatNumbers is optional; when present its length must equal
// NumTickets.
type CreateBookingInput struct {
	UserID      uint64
	EventID     uint64
	TierID      uint64
	NumTickets  int
	SeatNumbers []string
}

// CreateBooking runs the (none) -> PENDING_PAYMENT transition: it
// verifies the event's booking window, debits the tier under its row
// lock, registers seat holds for numbered seating and persists the
// booking with its payment deadline — all as one atomic unit.  No
// partial state survives any failure path.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*model.Booking, error) {
	if in.NumTickets < 1 {
		return nil, fmt.Errorf("%w: at least one ticket required", model.ErrSeatCountMismatch)
	}
	if len(in.SeatNumbers) > 0 && len(in.SeatNumbers) != in.NumTickets {
		return nil, model.ErrSeatCountMismatch
	}

	now := s.clock.Now()
	var booking *model.Booking

	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		ev, err := s.store.GetEvent(txCtx, in.EventID)
		if err != nil {
			return err
		}
		if !ev.IsBookable(now) {
			return model.ErrBookingClosed
		}
		if ev.NumberedSeating && len(in.SeatNumbers) == 0 {
			return fmt.Errorf("%w: event uses numbered seating", model.ErrSeatingMismatch)
		}
		if !ev.NumberedSeating && len(in.SeatNumbers) > 0 {
			return fmt.Errorf("%w: event is general admission", model.ErrSeatingMismatch)
		}

		// The tier row lock is the serialisation point: every
		// concurrent purchase against this tier queues here.
		tier, err := s.store.GetTierForUpdate(txCtx, in.TierID)
		if err != nil {
			return err
		}
		if tier.EventID != ev.ID {
			return model.ErrTierNotFound
		}
		if tier.AvailableSeats < in.NumTickets {
			return model.ErrInsufficientSeats
		}

		if len(in.SeatNumbers) > 0 {
			seen := make(map[string]struct{}, len(in.SeatNumbers))
			for _, seat := range in.SeatNumbers {
				if _, dup := seen[seat]; dup {
					return fmt.Errorf("seat %s requested twice: %w", seat, model.ErrSeatConflict)
				}
				seen[seat] = struct{}{}
				taken, err := s.store.SeatTaken(txCtx, ev.ID, seat)
				if err != nil {
					return err
				}
				if taken {
					return fmt.Errorf("seat %s: %w", seat, model.ErrSeatConflict)
				}
			}
		}

		if err := s.store.DebitTier(txCtx, tier.ID, in.NumTickets); err != nil {
			return err
		}

		reference, err := utils.NewBookingReference(now)
		if err != nil {
			return err
		}
		b := &model.Booking{
			Reference:        reference,
			UserID:           in.UserID,
			EventID:          ev.ID,
			TierID:           tier.ID,
			NumTickets:       in.NumTickets,
			TotalAmountCents: tier.PriceCents * int64(in.NumTickets),
			Status:           model.BookingStatusPendingPayment,
			PaymentStatus:    model.PaymentStatusPending,
			SeatNumbers:      in.SeatNumbers,
			CreatedAt:        now,
			ExpiresAt:        now.Add(s.grace),
		}
		if err := s.store.CreateBooking(txCtx, b); err != nil {
			return err
		}
		if err := s.store.CreateSeatReservations(txCtx, ev.ID, b.ID, in.SeatNumbers); err != nil {
			return err
		}
		if err := s.store.CreateTransaction(txCtx, &model.Transaction{
			UserID:      in.UserID,
			BookingID:   b.ID,
			Type:        model.TransactionTypeBooking,
			AmountCents: b.TotalAmountCents,
			Status:      model.TransactionStatusSuccess,
		}); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, booking.EventID)
	return booking, nil
}

// ConfirmPayment runs PENDING_PAYMENT -> CONFIRMED.  When the deadline
// already passed it performs the expiry transition instead (releasing
// the held inventory) and fails with model.ErrBookingExpired.
// Confirming a booking that is not pending fails with
// model.ErrInvalidState; nothing is silently repeated.
func (s *BookingService) ConfirmPayment(ctx context.Context, bookingID uint64, paymentTxnID string) (*model.Booking, error) {
	now := s.clock.Now()
	var (
		booking *model.Booking
		overdue bool
	)

	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.store.GetBookingForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}
		switch b.Status {
		case model.BookingStatusPendingPayment:
			// fall through
		case model.BookingStatusExpired:
			return model.ErrBookingExpired
		default:
			return model.ErrInvalidState
		}
		if now.After(b.ExpiresAt) {
			// Deadline passed while still pending: expire outside
			// this transaction so the release commits even though
			// the confirmation itself fails.
			overdue = true
			booking = b
			return nil
		}

		ok, err := s.store.MarkConfirmed(txCtx, b.ID, paymentTxnID, now)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrInvalidState
		}
		if err := s.store.ConfirmSeatReservations(txCtx, b.ID); err != nil {
			return err
		}
		b.Status = model.BookingStatusConfirmed
		b.PaymentStatus = model.PaymentStatusSuccess
		b.PaymentTxnID = &paymentTxnID
		b.ConfirmedAt = &now
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if overdue {
		if expErr := s.ExpireBooking(ctx, bookingID); expErr != nil && !errors.Is(expErr, model.ErrInvalidState) {
			log.Printf("booking: lazy expire of %d failed: %v", bookingID, expErr)
		}
		return nil, model.ErrBookingExpired
	}

	if s.publisher != nil {
		ev := queue.BookingConfirmedEvent{
			BookingID:        booking.ID,
			Reference:        booking.Reference,
			UserID:           booking.UserID,
			EventID:          booking.EventID,
			TierID:           booking.TierID,
			NumTickets:       booking.NumTickets,
			SeatNumbers:      booking.SeatNumbers,
			TotalAmountCents: booking.TotalAmountCents,
			PaymentTxnID:     paymentTxnID,
			ConfirmedAt:      now.Format(time.RFC3339),
		}
		if err := s.publisher.BookingConfirmed(ctx, ev); err != nil {
			log.Printf("booking: publish confirmed event for %d failed: %v", booking.ID, err)
		}
	}
	return booking, nil
}

// ExpireBooking runs PENDING_PAYMENT -> EXPIRED exactly once: the
// status-guarded update decides the winner when the sweeper and a late
// confirmation race, and only the winner credits the tier and releases
// the seats.  The loser gets model.ErrInvalidState.
func (s *BookingService) ExpireBooking(ctx context.Context, bookingID uint64) error {
	var booking *model.Booking

	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.store.GetBookingForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}
		ok, err := s.store.MarkExpired(txCtx, b.ID)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrInvalidState
		}
		if err := s.store.CreditTier(txCtx, b.TierID, b.NumTickets); err != nil {
			return err
		}
		if err := s.store.ReleaseSeatReservations(txCtx, b.ID); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, booking.EventID)
	s.publishRelease(ctx, booking, "expired")
	return nil
}

// CancelBooking runs CONFIRMED -> CANCELLED on behalf of the booking's
// owner: it credits the tier, releases the seat numbers and records a
// refund transaction.  Pending bookings cannot be cancelled here; they
// are reclaimed by the expiry path.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, requestingUserID uint64) error {
	now := s.clock.Now()
	var (
		booking   *model.Booking
		refundRef string
	)

	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.store.GetBookingForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID != requestingUserID {
			return model.ErrForbidden
		}
		if b.Status != model.BookingStatusConfirmed {
			return model.ErrInvalidState
		}
		ok, err := s.store.MarkCancelled(txCtx, b.ID)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrInvalidState
		}
		if err := s.store.CreditTier(txCtx, b.TierID, b.NumTickets); err != nil {
			return err
		}
		if err := s.store.ReleaseSeatReservations(txCtx, b.ID); err != nil {
			return err
		}
		refund := &model.Transaction{
			UserID:      b.UserID,
			BookingID:   b.ID,
			Type:        model.TransactionTypeRefund,
			AmountCents: b.TotalAmountCents,
			Status:      model.TransactionStatusSuccess,
		}
		if err := s.store.CreateTransaction(txCtx, refund); err != nil {
			return err
		}
		refundRef = refund.Reference
		booking = b
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, booking.EventID)
	if s.publisher != nil {
		ev := queue.BookingCancelledEvent{
			BookingID:        booking.ID,
			Reference:        booking.Reference,
			UserID:           booking.UserID,
			EventID:          booking.EventID,
			RefundReference:  refundRef,
			TotalAmountCents: booking.TotalAmountCents,
			CancelledAt:      now.Format(time.RFC3339),
		}
		if err := s.publisher.BookingCancelled(ctx, ev); err != nil {
			log.Printf("booking: publish cancelled event for %d failed: %v", booking.ID, err)
		}
	}
	s.publishRelease(ctx, booking, "cancelled")
	return nil
}

// GetBooking returns a booking by ID, enforcing ownership.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, requestingUserID uint64) (*model.Booking, error) {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != requestingUserID {
		return nil, model.ErrForbidden
	}
	return b, nil
}

// GetBookingByReference returns a booking by its reference code.  The
// reference acts as a bearer capability, so no ownership check is
// applied.
func (s *BookingService) GetBookingByReference(ctx context.Context, reference string) (*model.Booking, error) {
	return s.store.GetBookingByReference(ctx, reference)
}

// ListUserBookings returns all bookings of a user, newest first.
func (s *BookingService) ListUserBookings(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return s.store.ListBookingsByUser(ctx, userID)
}

func (s *BookingService) invalidate(ctx context.Context, eventID uint64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, eventID)
	}
}

func (s *BookingService) publishRelease(ctx context.Context, b *model.Booking, reason string) {
	if s.publisher == nil {
		return
	}
	ev := queue.SeatsReleasedEvent{
		EventID:    b.EventID,
		TierID:     b.TierID,
		NumTickets: b.NumTickets,
		Reason:     reason,
		ReleasedAt: s.clock.Now().Format(time.RFC3339),
	}
	if err := s.publisher.SeatsReleased(ctx, ev); err != nil {
		log.Printf("booking: publish seats released for %d failed: %v", b.ID, err)
	}
}
