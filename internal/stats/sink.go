package stats

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/multierr"
)

// Sink receives window snapshots during a run and the summary at its end.
type Sink interface {
	Window(Snapshot) error
	Final(Summary) error
}

// Multi fans out to every sink, collecting all errors.
type Multi []Sink

func (m Multi) Window(s Snapshot) error {
	var err error
	for _, sink := range m {
		err = multierr.Append(err, sink.Window(s))
	}
	return err
}

func (m Multi) Final(s Summary) error {
	var err error
	for _, sink := range m {
		err = multierr.Append(err, sink.Final(s))
	}
	return err
}

// Console prints the live EPS line and the final summary for a terminal.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	quiet bool
}

// NewConsole writes to w. With quiet set only the final summary is printed.
func NewConsole(w io.Writer, quiet bool) *Console {
	return &Console{w: w, quiet: quiet}
}

func (c *Console) Window(s Snapshot) error {
	if c.quiet {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "[INFO]: EPS=%g       \r", s.EPS)
	return err
}

func (c *Console) Final(s Summary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "\n[INFO]: %s\n", s)
	return err
}
