package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/SmitUplenchwar2687/netsender/internal/clock"
)

// MinSample is the shortest measurement window the controller evaluates.
// Sends closer than this to the last release are not checked.
const MinSample = time.Millisecond

// Decision captures the result of a throttle check.
type Decision struct {
	Allowed  bool      `json:"allowed"`
	Rate     int       `json:"rate"`     // Target EPS at the time of the check
	Observed float64   `json:"observed"` // Sends per second since the last release
	Pending  int64     `json:"pending"`  // Sends counted since the last release
	RetryAt  time.Time `json:"retry_at"` // Earliest time the check can pass (if denied)
}

// Controller throttles a sender to a target events-per-second value and
// ramps that target according to a Schedule.
//
// The measurement window is anchored at the last release. After every send
// the observed rate over the window is compared with the target; while it is
// above the target the caller has to wait. A passing check moves the anchor
// to now and clears the counter.
//
// Uses a Clock interface so it works with VirtualClock in tests.
type Controller struct {
	clock    clock.Clock
	schedule Schedule

	mu         sync.Mutex
	rate       int
	periodSecs int
	anchor     time.Time
	sent       int64
}

// NewController creates a controller starting at schedule.Start, clamped
// to schedule.Max when a maximum is configured.
//   - schedule: target rate and ramp parameters
//   - c: clock to use for time
func NewController(schedule Schedule, c clock.Clock) *Controller {
	if schedule.Interval <= 0 {
		schedule.Interval = 1
	}
	rate := schedule.Start
	if schedule.Max > 0 && rate > schedule.Max {
		rate = schedule.Max
	}
	return &Controller{
		clock:    c,
		schedule: schedule,
		rate:     rate,
		anchor:   c.Now(),
	}
}

// Rate returns the current target in events per second (0 = unlimited).
func (c *Controller) Rate() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

// Schedule returns the parameters the controller was built with.
func (c *Controller) Schedule() Schedule {
	return c.schedule
}

// Sent counts one transmitted record against the current window.
func (c *Controller) Sent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent++
}

// Allow checks whether the next record may be sent now.
func (c *Controller) Allow() Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	d := Decision{
		Allowed: true,
		Rate:    c.rate,
		Pending: c.sent,
	}
	if c.rate <= 0 {
		return d
	}

	elapsed := now.Sub(c.anchor)
	if elapsed < MinSample {
		return d
	}

	d.Observed = float64(c.sent) / elapsed.Seconds()
	if d.Observed <= float64(c.rate) {
		c.anchor = now
		c.sent = 0
		return d
	}

	// The check passes once sent/elapsed <= rate, i.e. once sent/rate
	// seconds have gone by since the anchor.
	need := math.Ceil(float64(c.sent) / float64(c.rate) * float64(time.Second))
	d.Allowed = false
	d.RetryAt = c.anchor.Add(time.Duration(need))
	return d
}

// Wait blocks until Allow passes, sleeping on the clock between checks.
// It returns early with the context error if ctx is done.
func (c *Controller) Wait(ctx context.Context) (Decision, error) {
	for {
		d := c.Allow()
		if d.Allowed {
			return d, nil
		}
		if err := ctx.Err(); err != nil {
			return d, err
		}

		wait := d.RetryAt.Sub(c.clock.Now())
		if wait <= 0 {
			wait = time.Microsecond
		}
		c.clock.Sleep(wait)
	}
}

// Tick advances the ramp by one whole second. Every schedule.Interval
// ticks the target grows by schedule.Step, clamped to schedule.Max when a
// maximum is configured. The target never decreases.
func (c *Controller) Tick() {
	if !c.schedule.Ramps() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.periodSecs++
	if c.periodSecs < c.schedule.Interval {
		return
	}
	c.periodSecs = 0

	next := c.rate + c.schedule.Step
	if c.schedule.Max > 0 && next > c.schedule.Max {
		next = c.schedule.Max
	}
	if next > c.rate {
		c.rate = next
	}
}
