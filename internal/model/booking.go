package model

import "time"

// Booking statuses.  PENDING_PAYMENT and CONFIRMED are the only
// non-terminal states; once a booking is CANCELLED or EXPIRED no
// further transition is permitted and the row is retained for audit.
const (
	BookingStatusPendingPayment = "PENDING_PAYMENT"
	BookingStatusConfirmed      = "CONFIRMED"
	BookingStatusCancelled      = "CANCELLED"
	BookingStatusExpired        = "EXPIRED"
)

// Payment statuses tracked alongside the booking status.
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusSuccess = "SUCCESS"
	PaymentStatusFailed  = "FAILED"
)

// Booking records a single purchase attempt for a number of tickets in
// one price tier.  It is created in PENDING_PAYMENT with an expiry
// deadline and moves through the state machine in the service layer;
// the associated tier debit is credited back exactly once when the
// booking expires or is cancelled.
//
// Fields:
//  ID               – primary key identifier.
//  Reference        – unique human-presentable code (FEST...).
//  UserID           – user who made the booking.
//  EventID          – event being booked.
//  TierID           – price tier the tickets were debited from.
//  NumTickets       – number of tickets, >= 1.
//  TotalAmountCents – NumTickets * tier price at booking time.
//  Status           – one of the BookingStatus* constants.
//  PaymentStatus    – one of the PaymentStatus* constants.
//  PaymentTxnID     – external payment transaction id, once confirmed.
//  SeatNumbers      – ordered seat labels for numbered seating events.
//  CreatedAt        – creation timestamp.
//  ExpiresAt        – CreatedAt plus the payment grace window.
//  ConfirmedAt      – when payment was confirmed (nullable).
type Booking struct {
	ID               uint64     // bookings.id
	Reference        string     // bookings.reference
	UserID           uint64     // bookings.user_id
	EventID          uint64     // bookings.event_id
	TierID           uint64     // bookings.tier_id
	NumTickets       int        // bookings.num_tickets
	TotalAmountCents int64      // bookings.total_amount_cents
	Status           string     // bookings.status
	PaymentStatus    string     // bookings.payment_status
	PaymentTxnID     *string    // bookings.payment_txn_id (nullable)
	SeatNumbers      []string   // from seat_reservations, ordered
	CreatedAt        time.Time  // bookings.created_at
	ExpiresAt        time.Time  // bookings.expires_at
	ConfirmedAt      *time.Time // bookings.confirmed_at (nullable)
}

// IsTerminal reports whether the booking has reached a state from
// which no further transition is permitted.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCancelled || b.Status == BookingStatusExpired
}
