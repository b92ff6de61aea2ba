// Package clock provides an injectable time source so booking
// deadlines can be controlled in tests.
package clock

import "time"

// Clock yields the current instant.  Services take a Clock instead of
// calling time.Now directly.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem returns a Clock backed by time.Now in UTC.
func NewSystem() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Fixed is a Clock pinned to a settable instant, for tests.
type Fixed struct {
	Instant time.Time
}

// NewFixed returns a *Fixed pinned at t (UTC).
func NewFixed(t time.Time) *Fixed { return &Fixed{Instant: t.UTC()} }

func (f *Fixed) Now() time.Time { return f.Instant }

// Advance moves the fixed clock forward by d.
func (f *Fixed) Advance(d time.Duration) { f.Instant = f.Instant.Add(d) }
