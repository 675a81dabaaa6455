package clock

import (
	"sync"
	"time"
)

// VirtualClock is a controllable clock for deterministic tests.
// Sleep does not block: it moves the virtual time forward instead, so a
// throttled send loop completes instantly while observing the same
// elapsed times it would see on the wall clock.
//
// Thread-safe for concurrent use.
type VirtualClock struct {
	mu      sync.RWMutex
	current time.Time
	slept   time.Duration
	sleeps  int
}

// NewVirtualClock creates a VirtualClock starting at the given time.
func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{
		current: start,
	}
}

// Now returns the current virtual time.
func (c *VirtualClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Since returns the virtual duration elapsed since t.
func (c *VirtualClock) Since(t time.Time) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Sub(t)
}

// Sleep advances the clock by d and accounts it as slept time.
// Non-positive durations are ignored.
func (c *VirtualClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(d)
	c.slept += d
	c.sleeps++
}

// Advance moves the virtual clock forward by the given duration without
// counting it as slept time. Panics if d is negative.
func (c *VirtualClock) Advance(d time.Duration) {
	if d < 0 {
		panic("clock: cannot advance by negative duration")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(d)
}

// Set sets the virtual clock to an exact time.
// Panics if t is before the current time.
func (c *VirtualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.Before(c.current) {
		panic("clock: cannot set time to the past")
	}

	c.current = t
}

// Slept reports the total virtual time spent in Sleep and the number of
// Sleep calls that moved the clock.
func (c *VirtualClock) Slept() (time.Duration, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.slept, c.sleeps
}
