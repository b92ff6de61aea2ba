package model

import "time"

// PriceTier is a priced category of tickets for an event with its own
// seat pool.  AvailableSeats is the single source of truth for
// remaining capacity and is only ever changed through the atomic
// debit/credit operations in the repository; the invariant
// 0 <= AvailableSeats <= TotalSeats holds at all times.
//
// Fields:
//  ID             – primary key identifier.
//  EventID        – event this tier belongs to.
//  Name           – tier label, unique per event (e.g. "VIP").
//  PriceCents     – ticket price in cents.
//  TotalSeats     – fixed pool size.
//  AvailableSeats – seats not currently debited by a live booking.
//  CreatedAt      – creation timestamp.
type PriceTier struct {
	ID             uint64    // price_tiers.id
	EventID        uint64    // price_tiers.event_id
	Name           string    // price_tiers.name
	PriceCents     int64     // price_tiers.price_cents
	TotalSeats     int       // price_tiers.total_seats
	AvailableSeats int       // price_tiers.available_seats
	CreatedAt      time.Time // price_tiers.created_at
}

// TierAvailability is the read-only projection of a tier exposed for
// catalog display.  Values may be served from a short-lived cache and
// are allowed to lag behind the authoritative counter.
type TierAvailability struct {
	TierID         uint64 `json:"tier_id"`
	Name           string `json:"name"`
	PriceCents     int64  `json:"price_cents"`
	TotalSeats     int    `json:"total_seats"`
	AvailableSeats int    `json:"available_seats"`
}
