// Package clock abstracts the wall clock so burial timestamps and trashed
// filenames can be made deterministic in tests.
package clock

import "time"

// StampLayout is the layout of the timestamp prefix of a trashed filename.
const StampLayout = "20060102T150405"

// Clock provides the current time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system time.
type RealClock struct{}

// Now returns the current system time.
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// Stamp formats t in local time for use as a trashed filename prefix.
func Stamp(t time.Time) string {
	return t.Local().Format(StampLayout)
}

// FakeClock implements Clock with a manually controlled time for testing.
type FakeClock struct {
	current time.Time
}

// NewFakeClock creates a new FakeClock starting at t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{current: t}
}

// Now returns the fixed time.
func (c *FakeClock) Now() time.Time {
	return c.current
}

// Set updates the fixed time.
func (c *FakeClock) Set(t time.Time) {
	c.current = t
}

// Advance moves the fixed time forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
