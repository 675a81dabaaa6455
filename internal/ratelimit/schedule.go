package ratelimit

import (
	"fmt"
	"strconv"
)

// DefaultInterval is the ramp interval, in seconds, used when the
// schedule string does not carry a fourth field.
const DefaultInterval = 5

// Schedule holds the target rate parameters in events per second.
type Schedule struct {
	Start    int `json:"start"`    // Initial target; 0 means unlimited
	Step     int `json:"step"`     // Increase applied every Interval seconds; 0 disables ramping
	Max      int `json:"max"`      // Ceiling for the ramp; 0 means no ceiling
	Interval int `json:"interval"` // Seconds between ramp steps
}

// ParseSchedule parses "START:STEP:MAX:INTERVAL".
//
// Every run of decimal digits is a field and any other character ends the
// current field, so "1000:100:5000:2", "1000/100/5000/2" and "1000 100" are
// all accepted. Empty fields parse as 0, except an empty interval which keeps
// DefaultInterval, as does a missing one.
func ParseSchedule(s string) (Schedule, error) {
	var fields [4]int
	fields[3] = DefaultInterval

	field := 0
	start := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] >= '0' && s[i] <= '9' {
			continue
		}
		digits := s[start:i]
		start = i + 1
		if field >= len(fields) {
			if digits != "" {
				return Schedule{}, fmt.Errorf("rate %q: more than %d fields", s, len(fields))
			}
			continue
		}
		if digits != "" {
			n, err := strconv.Atoi(digits)
			if err != nil {
				return Schedule{}, fmt.Errorf("rate %q: field %d: %w", s, field+1, err)
			}
			fields[field] = n
		}
		field++
	}

	return Schedule{
		Start:    fields[0],
		Step:     fields[1],
		Max:      fields[2],
		Interval: fields[3],
	}, nil
}

// String formats the schedule back into its flag form.
func (s Schedule) String() string {
	return fmt.Sprintf("%d:%d:%d:%d", s.Start, s.Step, s.Max, s.Interval)
}

// Ramps reports whether the target rate changes over time.
func (s Schedule) Ramps() bool {
	return s.Step > 0
}
