// Package sender drives a run: it reads records from each source in turn,
// sends them, paces the stream and reports throughput.
package sender

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/SmitUplenchwar2687/netsender/internal/clock"
	"github.com/SmitUplenchwar2687/netsender/internal/framing"
	"github.com/SmitUplenchwar2687/netsender/internal/ratelimit"
	"github.com/SmitUplenchwar2687/netsender/internal/source"
	"github.com/SmitUplenchwar2687/netsender/internal/stats"
)

// Transmitter writes one record as one frame.
type Transmitter interface {
	Send(rec []byte) (int, error)
}

// Options configures a run.
type Options struct {
	Sources source.List
	Framing framing.Options
	// MaxLength truncates every record before it is sent.
	MaxLength int
	// MaxMessages stops the run after that many sends. Zero means no limit.
	MaxMessages int64
	// Delay is slept after every send.
	Delay time.Duration
	// Loop restarts from the first file once all have been read. It has no
	// effect on standard input.
	Loop bool
	// Echo, if set, receives a copy of every record sent.
	Echo io.Writer
	Sink stats.Sink
	// HighWaterMark is advisory and only logged.
	HighWaterMark int
	Logger        *zap.Logger
}

// Sender runs the send loop. It is single-use and not safe for concurrent use.
type Sender struct {
	tx     Transmitter
	ctl    *ratelimit.Controller
	clock  clock.Clock
	opts   Options
	logger *zap.Logger

	agg *stats.Aggregator
}

// New creates a Sender. A nil controller sends unthrottled.
func New(tx Transmitter, ctl *ratelimit.Controller, clk clock.Clock, opts Options) *Sender {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	if ctl == nil {
		ctl = ratelimit.NewController(ratelimit.Schedule{}, clk)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = framing.DefaultMaxLength
	}
	if opts.Framing.MaxLength <= 0 {
		opts.Framing.MaxLength = opts.MaxLength
	}

	s := &Sender{
		tx:     tx,
		ctl:    ctl,
		clock:  clk,
		opts:   opts,
		logger: opts.Logger.With(zap.String("component", "sender")),
	}
	if s.opts.Framing.OnViolation == nil {
		s.opts.Framing.OnViolation = s.logViolation
	}
	return s
}

// Run sends until the sources are exhausted, MaxMessages is reached or ctx
// is cancelled. The summary is always returned and delivered to the sink,
// even when the run ends with an error.
func (s *Sender) Run(ctx context.Context) (stats.Summary, error) {
	s.agg = stats.NewAggregator(s.clock)
	s.logStart()

	err := s.run(ctx)

	summary := s.agg.Finalize()
	if s.opts.Sink != nil {
		if serr := s.opts.Sink.Final(summary); serr != nil {
			s.logger.Warn("stats sink failed", zap.Error(serr))
		}
	}
	return summary, err
}

func (s *Sender) logStart() {
	fields := []zap.Field{
		zap.String("run_id", s.agg.RunID()),
		zap.Int("sources", s.opts.Sources.Len()),
		zap.Stringer("format", s.opts.Framing.Mode),
		zap.Int("max_length", s.opts.MaxLength),
	}
	if s.opts.MaxMessages > 0 {
		fields = append(fields, zap.Int64("max_messages", s.opts.MaxMessages))
	}
	if sch := s.ctl.Schedule(); sch.Start > 0 {
		fields = append(fields, zap.Stringer("rate", sch))
	}
	if s.opts.HighWaterMark > 0 {
		fields = append(fields, zap.Int("hwm", s.opts.HighWaterMark))
	}
	s.logger.Info("run starting", fields...)
}

func (s *Sender) run(ctx context.Context) error {
	loop := s.opts.Loop
	if loop && s.opts.Sources.UsesStdin() {
		s.logger.Warn("cannot loop over standard input, reading it once")
		loop = false
	}

	for pass := 1; ; pass++ {
		before := s.agg.Events() + s.agg.Dropped()
		for i := 0; i < s.opts.Sources.Len(); i++ {
			finished, err := s.drain(ctx, i)
			if err != nil || finished {
				return err
			}
		}
		if !loop {
			return nil
		}
		if s.agg.Events()+s.agg.Dropped() == before {
			s.logger.Warn("sources produced no records, stopping loop", zap.Int("pass", pass))
			return nil
		}
		s.logger.Debug("restarting from first source", zap.Int("pass", pass+1))
	}
}

// drain sends every record of source i. It reports finished when the run
// must stop without error.
func (s *Sender) drain(ctx context.Context, i int) (finished bool, err error) {
	name := s.opts.Sources.Name(i)
	log := s.logger.With(zap.String("source", name))

	rc, err := s.opts.Sources.Open(i)
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			log.Debug("closing source", zap.Error(cerr))
		}
	}()

	fr, err := framing.New(rc, s.opts.Framing)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", name, err)
	}
	log.Debug("reading source")

	for {
		if ctx.Err() != nil {
			log.Info("run interrupted")
			return true, nil
		}

		rec, err := fr.Next()
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			log.Debug("source exhausted", zap.Int("records", fr.Records()))
			return false, nil
		case framing.Recoverable(err):
			s.agg.RecordDropped()
			log.Warn("record dropped", zap.Error(err))
			continue
		default:
			return false, fmt.Errorf("reading %s: %w", name, err)
		}

		if len(rec) > s.opts.MaxLength {
			rec = rec[:s.opts.MaxLength]
		}
		if finished, err := s.send(ctx, rec); err != nil || finished {
			return finished, err
		}
	}
}

func (s *Sender) send(ctx context.Context, rec []byte) (finished bool, err error) {
	if _, err := s.tx.Send(rec); err != nil {
		return false, err
	}
	s.agg.RecordSent(len(rec))
	s.ctl.Sent()

	if s.opts.Echo != nil {
		if _, err := s.opts.Echo.Write(rec); err != nil {
			s.logger.Debug("echo failed", zap.Error(err))
		}
	}
	if ce := s.logger.Check(zapcore.DebugLevel, "record sent"); ce != nil {
		ce.Write(zap.Int("bytes", len(rec)), zap.Int64("events", s.agg.Events()))
	}
	if s.opts.Delay > 0 {
		s.clock.Sleep(s.opts.Delay)
	}
	if s.opts.MaxMessages > 0 && s.agg.Events() >= s.opts.MaxMessages {
		s.logger.Debug("max messages reached", zap.Int64("events", s.agg.Events()))
		return true, nil
	}

	if _, err := s.ctl.Wait(ctx); err != nil {
		s.logger.Info("run interrupted while throttled")
		return true, nil
	}
	s.emitWindow()
	return false, nil
}

func (s *Sender) emitWindow() {
	snap, ok := s.agg.MaybeEmitWindow()
	if !ok {
		return
	}
	snap.TargetRate = float64(s.ctl.Rate())
	if s.opts.Sink != nil {
		if err := s.opts.Sink.Window(snap); err != nil {
			s.logger.Debug("stats sink failed", zap.Error(err))
		}
	}

	before := s.ctl.Rate()
	s.ctl.Tick()
	if after := s.ctl.Rate(); after != before {
		s.logger.Info("rate raised", zap.Int("from", before), zap.Int("to", after))
	}
}

func (s *Sender) logViolation(v framing.Violation) {
	s.logger.Warn(fmt.Sprintf("special character '%d' at location=%d", v.Char, v.Offset),
		zap.Int("record", v.Record),
		zap.String("context", fmt.Sprintf("-->%s%c", v.Partial, v.Char)),
	)
}
