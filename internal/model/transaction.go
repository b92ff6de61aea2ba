package model

import "time"

// Transaction types and statuses for the audit ledger.
const (
	TransactionTypeBooking = "BOOKING"
	TransactionTypeRefund  = "REFUND"

	TransactionStatusSuccess = "SUCCESS"
)

// Transaction is an append-only audit record written in the same
// database transaction as the booking transition it describes:
// a BOOKING row when a booking is created and a REFUND row when a
// confirmed booking is cancelled.  Rows are never updated or deleted.
type Transaction struct {
	ID          uint64    // transactions.id
	Reference   string    // transactions.reference (uuid)
	UserID      uint64    // transactions.user_id
	BookingID   uint64    // transactions.booking_id
	Type        string    // transactions.type
	AmountCents int64     // transactions.amount_cents
	Status      string    // transactions.status
	CreatedAt   time.Time // transactions.created_at
}
