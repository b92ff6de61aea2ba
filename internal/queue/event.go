// Package queue defines message payloads exchanged over the message
// broker together with the publisher and the in-process logging
// consumer.  Messages notify downstream collaborators: ticket/email
// generation after confirmation, refund handling after cancellation,
// and waitlist promotion after inventory is released.
package queue

// Queue names.  One durable queue per event type.
const (
	QueueBookingConfirmed = "booking.confirmed"
	QueueBookingCancelled = "booking.cancelled"
	QueueSeatsReleased    = "seats.released"
)

// BookingConfirmedEvent is published when payment is confirmed and a
// booking reaches CONFIRMED.  It carries enough for downstream ticket
// and email generation without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID        uint64   `json:"booking_id"`
	Reference        string   `json:"reference"`
	UserID           uint64   `json:"user_id"`
	EventID          uint64   `json:"event_id"`
	TierID           uint64   `json:"tier_id"`
	NumTickets       int      `json:"num_tickets"`
	SeatNumbers      []string `json:"seat_numbers,omitempty"`
	TotalAmountCents int64    `json:"total_amount_cents"`
	PaymentTxnID     string   `json:"payment_txn_id"`
	ConfirmedAt      string   `json:"confirmed_at"`
}

// BookingCancelledEvent is published when a confirmed booking is
// cancelled, triggering refund notification downstream.
type BookingCancelledEvent struct {
	BookingID        uint64 `json:"booking_id"`
	Reference        string `json:"reference"`
	UserID           uint64 `json:"user_id"`
	EventID          uint64 `json:"event_id"`
	RefundReference  string `json:"refund_reference"`
	TotalAmountCents int64  `json:"total_amount_cents"`
	CancelledAt      string `json:"cancelled_at"`
}

// SeatsReleasedEvent is published whenever inventory returns to a tier
// (expiry or cancellation) so waitlist consumers can notify waiting
// users.
type SeatsReleasedEvent struct {
	EventID    uint64 `json:"event_id"`
	TierID     uint64 `json:"tier_id"`
	NumTickets int    `json:"num_tickets"`
	Reason     string `json:"reason"` // "expired" or "cancelled"
	ReleasedAt string `json:"released_at"`
}
