// Package generate produces synthetic log events for exercising a send run.
package generate

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/SmitUplenchwar2687/netsender/internal/framing"
)

const (
	// PatternSteady spreads events evenly over the duration.
	PatternSteady = "steady"
	// PatternBurst clusters events into bursts with quiet gaps.
	PatternBurst = "burst"
	// PatternRamp makes event density increase over time.
	PatternRamp = "ramp"
)

// DefaultApps is the program pool used when Options.Apps is empty.
var DefaultApps = []string{"sshd", "nginx", "kernel", "cron", "postfix"}

var severities = []string{"info", "notice", "warning", "err"}

// syslog numeric severities for the entries of severities.
var severityCodes = map[string]int{"info": 6, "notice": 5, "warning": 4, "err": 3}

var messages = []string{
	"connection accepted",
	"request completed",
	"session opened for user admin",
	"queue flushed",
	"disk usage above threshold",
	"upstream timed out",
}

// Event is one synthetic log event.
type Event struct {
	Seq      int       `json:"seq"`
	Time     time.Time `json:"time"`
	Host     string    `json:"host"`
	App      string    `json:"app"`
	PID      int       `json:"pid"`
	Severity string    `json:"severity"`
	Message  string    `json:"message"`
}

// Line renders the event as an RFC 3164 style syslog line (local0 facility)
// without the trailing newline.
func (e Event) Line() string {
	pri := 16*8 + severityCodes[e.Severity]
	return fmt.Sprintf("<%d>%s %s %s[%d]: %s seq=%d",
		pri, e.Time.Format(time.Stamp), e.Host, e.App, e.PID, e.Message, e.Seq)
}

// Options controls how events are generated.
type Options struct {
	Count    int
	Hosts    int
	Duration time.Duration
	Pattern  string
	Start    time.Time
	Seed     int64
	Apps     []string
}

// DefaultOptions returns the defaults used by the CLI.
func DefaultOptions() Options {
	return Options{
		Count:    1000,
		Hosts:    3,
		Duration: 5 * time.Minute,
		Pattern:  PatternSteady,
	}
}

// Events creates synthetic events based on the provided options.
func Events(opts Options) ([]Event, error) {
	if opts.Count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", opts.Count)
	}
	if opts.Hosts <= 0 {
		return nil, fmt.Errorf("hosts must be positive, got %d", opts.Hosts)
	}
	if opts.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %s", opts.Duration)
	}

	if opts.Pattern == "" {
		opts.Pattern = PatternSteady
	}
	if opts.Start.IsZero() {
		opts.Start = time.Now().Truncate(time.Second)
	}
	if len(opts.Apps) == 0 {
		opts.Apps = DefaultApps
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	g := &generator{
		rng:   rand.New(rand.NewSource(opts.Seed)),
		hosts: makeHosts(opts.Hosts),
		apps:  opts.Apps,
	}

	var times []time.Time
	switch opts.Pattern {
	case PatternBurst:
		times = burstTimes(g.rng, opts.Start, opts.Count, opts.Duration)
	case PatternRamp:
		times = rampTimes(opts.Start, opts.Count, opts.Duration)
	default: // steady and unknown patterns
		times = steadyTimes(opts.Start, opts.Count, opts.Duration)
	}

	events := make([]Event, len(times))
	for i, ts := range times {
		events[i] = g.event(i+1, ts)
	}
	return events, nil
}

// Write encodes events in the given framing mode: syslog lines for Lines,
// one JSON object per line for JSON.
func Write(w io.Writer, events []Event, mode framing.Mode) error {
	bw := bufio.NewWriter(w)
	switch mode {
	case framing.Lines:
		for _, e := range events {
			if _, err := fmt.Fprintln(bw, e.Line()); err != nil {
				return err
			}
		}
	case framing.JSON:
		enc := json.NewEncoder(bw)
		for _, e := range events {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("cannot generate %s records", mode)
	}
	return bw.Flush()
}

type generator struct {
	rng   *rand.Rand
	hosts []string
	apps  []string
}

func (g *generator) event(seq int, ts time.Time) Event {
	return Event{
		Seq:      seq,
		Time:     ts,
		Host:     g.hosts[g.rng.Intn(len(g.hosts))],
		App:      g.apps[g.rng.Intn(len(g.apps))],
		PID:      1000 + g.rng.Intn(30000),
		Severity: severities[g.rng.Intn(len(severities))],
		Message:  messages[g.rng.Intn(len(messages))],
	}
}

func makeHosts(n int) []string {
	hosts := make([]string, n)
	for i := range hosts {
		hosts[i] = fmt.Sprintf("host-%d", i+1)
	}
	return hosts
}

func steadyTimes(start time.Time, count int, dur time.Duration) []time.Time {
	interval := dur / time.Duration(count)
	times := make([]time.Time, count)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * interval)
	}
	return times
}

func burstTimes(rng *rand.Rand, start time.Time, count int, dur time.Duration) []time.Time {
	times := make([]time.Time, 0, count)
	numBursts := 4
	burstSize := count / numBursts
	burstGap := dur / time.Duration(numBursts)

	for b := 0; b < numBursts; b++ {
		burstStart := start.Add(time.Duration(b) * burstGap)
		for i := 0; i < burstSize; i++ {
			offset := time.Duration(rng.Intn(1000)) * time.Millisecond
			times = append(times, burstStart.Add(offset))
		}
	}

	for len(times) < count {
		times = append(times, start.Add(time.Duration(rng.Int63n(int64(dur)))))
	}
	return times
}

func rampTimes(start time.Time, count int, dur time.Duration) []time.Time {
	times := make([]time.Time, count)
	for i := range times {
		frac := float64(i) / float64(count)
		times[i] = start.Add(time.Duration(frac * frac * float64(dur)))
	}
	return times
}
