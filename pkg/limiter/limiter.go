package limiter

import (
	"github.com/SmitUplenchwar2687/netsender/internal/ratelimit"
	"github.com/SmitUplenchwar2687/netsender/pkg/clock"
)

// DefaultInterval is the ramp interval in seconds when none is given.
const DefaultInterval = ratelimit.DefaultInterval

// Schedule is a START:STEP:MAX:INTERVAL rate ramp.
type Schedule = ratelimit.Schedule

// Controller throttles a sender to a target events-per-second value.
type Controller = ratelimit.Controller

// Decision captures the result of a throttle check.
type Decision = ratelimit.Decision

// ParseSchedule parses "START:STEP:MAX:INTERVAL".
func ParseSchedule(s string) (Schedule, error) {
	return ratelimit.ParseSchedule(s)
}

// NewController creates a controller starting at schedule.Start.
func NewController(schedule Schedule, c clock.Clock) *Controller {
	return ratelimit.NewController(schedule, c)
}
