// Package clock abstracts time so staleness scoring, backup ref naming,
// and trace timestamps are deterministic in tests.
package clock

import "time"

// Clock provides the current time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// Now returns the current system time.
func (RealClock) Now() time.Time { return time.Now() }

// FakeClock returns a fixed, advanceable time for tests.
type FakeClock struct {
	current time.Time
}

// NewFakeClock creates a FakeClock pinned to t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{current: t}
}

// Now returns the pinned time.
func (c *FakeClock) Now() time.Time { return c.current }

// Advance moves the pinned time forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
