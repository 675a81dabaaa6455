package generate

import (
	"io"

	"github.com/SmitUplenchwar2687/netsender/internal/framing"
	internalgenerate "github.com/SmitUplenchwar2687/netsender/internal/generate"
)

const (
	// PatternSteady spreads events evenly over the duration.
	PatternSteady = internalgenerate.PatternSteady
	// PatternBurst clusters events into bursts with quiet gaps.
	PatternBurst = internalgenerate.PatternBurst
	// PatternRamp makes event density increase over time.
	PatternRamp = internalgenerate.PatternRamp
)

// Event is one synthetic log event.
type Event = internalgenerate.Event

// Options controls how events are generated.
type Options = internalgenerate.Options

// DefaultOptions returns defaults aligned with the netsender CLI.
func DefaultOptions() Options {
	return internalgenerate.DefaultOptions()
}

// Events creates synthetic events based on the provided options.
func Events(opts Options) ([]Event, error) {
	return internalgenerate.Events(opts)
}

// WriteLines writes events as syslog-style lines.
func WriteLines(w io.Writer, events []Event) error {
	return internalgenerate.Write(w, events, framing.Lines)
}

// WriteJSON writes events as newline-delimited JSON objects.
func WriteJSON(w io.Writer, events []Event) error {
	return internalgenerate.Write(w, events, framing.JSON)
}
