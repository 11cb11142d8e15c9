package testutil

import "sync"

// ManualClock is a wall clock for tests that only moves when told to.
//
// It satisfies timing.Clock. The same sequence of Advance calls always
// produces the same positions, which keeps golden traces stable.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu  sync.Mutex
	now float64
}

// NewManualClock creates a clock reading start seconds.
func NewManualClock(start float64) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current time in seconds.
func (c *ManualClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by seconds and returns the new time.
// Negative values are ignored; the clock never runs backwards.
func (c *ManualClock) Advance(seconds float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seconds > 0 {
		c.now += seconds
	}
	return c.now
}

// Reset sets the clock back to 0 for test reuse.
func (c *ManualClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = 0
}
