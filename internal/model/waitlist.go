package model

import "time"

// Waitlist statuses.
const (
	WaitlistStatusWaiting   = "WAITING"
	WaitlistStatusCancelled = "CANCELLED"
)

// WaitlistEntry records a user waiting for capacity on a sold-out
// event.  Entries are ordered by JoinedAt; when inventory is credited
// back a seats.released message is published so downstream consumers
// can notify the head of the queue.
type WaitlistEntry struct {
	ID          uint64     // waitlist.id
	EventID     uint64     // waitlist.event_id
	UserID      uint64     // waitlist.user_id
	Status      string     // waitlist.status
	JoinedAt    time.Time  // waitlist.joined_at
	CancelledAt *time.Time // waitlist.cancelled_at (nullable)
}
