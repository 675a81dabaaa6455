// Package sender exposes the netsender send loop for embedding.
package sender

import (
	"context"

	"go.uber.org/zap"

	"github.com/SmitUplenchwar2687/netsender/internal/framing"
	internalsender "github.com/SmitUplenchwar2687/netsender/internal/sender"
	"github.com/SmitUplenchwar2687/netsender/internal/source"
	"github.com/SmitUplenchwar2687/netsender/internal/stats"
	"github.com/SmitUplenchwar2687/netsender/internal/transport"
	"github.com/SmitUplenchwar2687/netsender/pkg/clock"
	"github.com/SmitUplenchwar2687/netsender/pkg/limiter"
)

// Record framing modes.
const (
	Lines = framing.Lines
	JSON  = framing.JSON
	Pcap  = framing.Pcap
)

// Transport kinds.
const (
	UDP = transport.UDP
	TCP = transport.TCP
)

// Sender runs the send loop.
type Sender = internalsender.Sender

// Options configures a run.
type Options = internalsender.Options

// Transmitter writes one record as one frame.
type Transmitter = internalsender.Transmitter

// Sources is the ordered list of inputs for a run.
type Sources = source.List

// FramingOptions controls how records are split.
type FramingOptions = framing.Options

// Violation describes a disallowed byte found in binary-safe mode.
type Violation = framing.Violation

// Sink receives window snapshots and the final summary.
type Sink = stats.Sink

// Snapshot is the throughput of one one-second window.
type Snapshot = stats.Snapshot

// Summary is the final report of a run.
type Summary = stats.Summary

// TransportConfig describes the destination and socket options.
type TransportConfig = transport.Config

// Channel is an open UDP or TCP sending socket. It is a Transmitter.
type Channel = transport.Channel

// New creates a Sender. A nil controller sends unthrottled and a nil clock
// uses real time.
func New(tx Transmitter, ctl *limiter.Controller, clk clock.Clock, opts Options) *Sender {
	return internalsender.New(tx, ctl, clk, opts)
}

// Dial opens the sending socket described by cfg.
func Dial(ctx context.Context, cfg TransportConfig, logger *zap.Logger) (*Channel, error) {
	return transport.Open(ctx, cfg, logger)
}

// ExpandFiles expands environment variables, ~ and globs in file patterns.
func ExpandFiles(patterns []string) ([]string, error) {
	return source.Expand(patterns)
}
