// Package stats accumulates send throughput and reports it per second and
// at the end of a run.
package stats

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SmitUplenchwar2687/netsender/internal/clock"
)

// Snapshot is the throughput of one reporting window.
type Snapshot struct {
	RunID         string    `json:"run_id"`
	Time          time.Time `json:"time"`
	EPS           float64   `json:"eps"`
	WindowEvents  int64     `json:"window_events"`
	WindowSeconds float64   `json:"window_seconds"`
	TotalEvents   int64     `json:"total_events"`
	TotalBytes    int64     `json:"total_bytes"`
	Dropped       int64     `json:"dropped"`
	TargetRate    float64   `json:"target_rate"` // 0 when unthrottled
}

// Summary is the final report of a run.
type Summary struct {
	RunID         string    `json:"run_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Events        int64     `json:"events"`
	Dropped       int64     `json:"dropped"`
	Bytes         int64     `json:"bytes"`
	Seconds       float64   `json:"seconds"`
	EPS           float64   `json:"eps"`
	MBPS          float64   `json:"mbps"`
	MBytes        float64   `json:"mbytes"`
	BytesPerEvent float64   `json:"bytes_per_event"`
}

func (s Summary) String() string {
	return fmt.Sprintf("%g EPS, %d events, %g seconds, %g MBPS, %g MBytes, %g BPE",
		s.EPS, s.Events, s.Seconds, s.MBPS, s.MBytes, s.BytesPerEvent)
}

// Aggregator counts events and bytes. It is used from the send loop only
// and is not safe for concurrent use.
type Aggregator struct {
	clock clock.Clock
	runID string

	start       time.Time
	windowStart time.Time

	events       int64
	bytes        int64
	dropped      int64
	windowEvents int64
}

// NewAggregator starts a run at the current time of c.
func NewAggregator(c clock.Clock) *Aggregator {
	now := c.Now()
	return &Aggregator{
		clock:       c,
		runID:       uuid.NewString(),
		start:       now,
		windowStart: now,
	}
}

// RunID identifies this run in every snapshot and summary.
func (a *Aggregator) RunID() string {
	return a.runID
}

// RecordSent counts one event of n bytes.
func (a *Aggregator) RecordSent(n int) {
	a.events++
	a.bytes += int64(n)
	a.windowEvents++
}

// RecordDropped counts a record that could not be framed.
func (a *Aggregator) RecordDropped() {
	a.dropped++
}

// Events returns the number of events counted so far.
func (a *Aggregator) Events() int64 {
	return a.events
}

// Dropped returns the number of records dropped so far.
func (a *Aggregator) Dropped() int64 {
	return a.dropped
}

// Bytes returns the number of bytes counted so far.
func (a *Aggregator) Bytes() int64 {
	return a.bytes
}

// MaybeEmitWindow closes the current window once the wall-clock second has
// moved past the one the window started in.
func (a *Aggregator) MaybeEmitWindow() (Snapshot, bool) {
	now := a.clock.Now()
	if now.Unix() <= a.windowStart.Unix() {
		return Snapshot{}, false
	}

	elapsed := now.Sub(a.windowStart).Seconds()
	snap := Snapshot{
		RunID:         a.runID,
		Time:          now,
		EPS:           ratio(float64(a.windowEvents), elapsed),
		WindowEvents:  a.windowEvents,
		WindowSeconds: elapsed,
		TotalEvents:   a.events,
		TotalBytes:    a.bytes,
		Dropped:       a.dropped,
	}
	a.windowStart = now
	a.windowEvents = 0
	return snap, true
}

// Finalize returns the summary of the run up to now.
func (a *Aggregator) Finalize() Summary {
	now := a.clock.Now()
	secs := now.Sub(a.start).Seconds()
	return Summary{
		RunID:         a.runID,
		Start:         a.start,
		End:           now,
		Events:        a.events,
		Dropped:       a.dropped,
		Bytes:         a.bytes,
		Seconds:       secs,
		EPS:           ratio(float64(a.events), secs),
		MBPS:          ratio(1e-6*float64(a.bytes), secs),
		MBytes:        1e-6 * float64(a.bytes),
		BytesPerEvent: ratio(float64(a.bytes), float64(a.events)),
	}
}

func ratio(n, d float64) float64 {
	if d <= 0 {
		return 0
	}
	return n / d
}
