// Package receiver counts frames arriving on a UDP or TCP endpoint. It is
// the far end used to check a sender against.
package receiver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SmitUplenchwar2687/netsender/internal/clock"
	"github.com/SmitUplenchwar2687/netsender/internal/framing"
	"github.com/SmitUplenchwar2687/netsender/internal/stats"
	"github.com/SmitUplenchwar2687/netsender/internal/transport"
)

const (
	maxDatagram  = 64 * 1024
	pollInterval = 100 * time.Millisecond
)

// Options configures a Receiver.
type Options struct {
	Kind transport.Kind
	Addr string
	// Framing splits TCP streams into records. UDP datagrams are always
	// one record each.
	Framing framing.Options
	Clock   clock.Clock
	Sink    stats.Sink
	Logger  *zap.Logger
	// OnRecord, if set, sees every record. Calls are serialized and the
	// slice is only valid during the call.
	OnRecord func([]byte)
}

// Receiver accepts frames and feeds a stats aggregator.
type Receiver struct {
	opts   Options
	logger *zap.Logger

	udp net.PacketConn
	ln  net.Listener

	mu    sync.Mutex
	agg   *stats.Aggregator
	conns map[net.Conn]struct{}
}

// Listen binds the endpoint described by opts.
func Listen(ctx context.Context, opts Options) (*Receiver, error) {
	if opts.Clock == nil {
		opts.Clock = clock.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Framing.Mode == framing.Pcap {
		return nil, fmt.Errorf("pcap framing is not available for a live listener")
	}

	r := &Receiver{
		opts:   opts,
		logger: opts.Logger.With(zap.String("component", "receiver"), zap.Stringer("kind", opts.Kind)),
		conns:  make(map[net.Conn]struct{}),
	}

	var lc net.ListenConfig
	var err error
	switch opts.Kind {
	case transport.UDP:
		r.udp, err = lc.ListenPacket(ctx, "udp", opts.Addr)
	case transport.TCP:
		r.ln, err = lc.Listen(ctx, "tcp", opts.Addr)
	default:
		err = fmt.Errorf("unsupported transport %s", opts.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", opts.Addr, err)
	}
	r.logger.Info("listening", zap.String("addr", r.Addr().String()))
	return r, nil
}

// Addr returns the bound local address.
func (r *Receiver) Addr() net.Addr {
	if r.udp != nil {
		return r.udp.LocalAddr()
	}
	return r.ln.Addr()
}

// Serve receives until ctx is cancelled and returns the run summary.
func (r *Receiver) Serve(ctx context.Context) (stats.Summary, error) {
	r.mu.Lock()
	r.agg = stats.NewAggregator(r.opts.Clock)
	r.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		r.closeAll()
		return nil
	})
	g.Go(func() error {
		return r.report(gctx)
	})
	if r.udp != nil {
		g.Go(func() error { return r.serveUDP(gctx) })
	} else {
		g.Go(func() error { return r.serveTCP(gctx, g) })
	}
	err := g.Wait()

	r.mu.Lock()
	summary := r.agg.Finalize()
	r.mu.Unlock()
	if r.opts.Sink != nil {
		if serr := r.opts.Sink.Final(summary); serr != nil {
			r.logger.Warn("stats sink failed", zap.Error(serr))
		}
	}
	return summary, err
}

func (r *Receiver) serveUDP(ctx context.Context) error {
	buf := make([]byte, maxDatagram)
	for {
		n, _, err := r.udp.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading datagram: %w", err)
		}
		r.count(buf[:n])
	}
}

func (r *Receiver) serveTCP(ctx context.Context, g *errgroup.Group) error {
	for {
		conn, err := r.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}
		if !r.track(conn) {
			conn.Close()
			return nil
		}
		g.Go(func() error {
			r.handleConn(conn)
			return nil
		})
	}
}

func (r *Receiver) handleConn(conn net.Conn) {
	defer r.untrack(conn)
	log := r.logger.With(zap.String("peer", conn.RemoteAddr().String()))
	log.Debug("connection accepted")

	fr, err := framing.New(conn, r.opts.Framing)
	if err != nil {
		log.Warn("framing setup failed", zap.Error(err))
		return
	}
	for {
		rec, err := fr.Next()
		switch {
		case err == nil:
			r.count(rec)
		case errors.Is(err, io.EOF):
			log.Debug("connection closed", zap.Int("records", fr.Records()))
			return
		case framing.Recoverable(err):
			log.Debug("record dropped", zap.Error(err))
			r.mu.Lock()
			r.agg.RecordDropped()
			r.mu.Unlock()
		default:
			log.Debug("connection ended", zap.Error(err))
			return
		}
	}
}

func (r *Receiver) count(rec []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.opts.OnRecord != nil {
		r.opts.OnRecord(rec)
	}
	r.agg.RecordSent(len(rec))
}

// report emits a window whenever the aggregator closes one.
func (r *Receiver) report(ctx context.Context) error {
	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
		r.mu.Lock()
		snap, ok := r.agg.MaybeEmitWindow()
		r.mu.Unlock()
		if ok && r.opts.Sink != nil {
			if err := r.opts.Sink.Window(snap); err != nil {
				r.logger.Debug("stats sink failed", zap.Error(err))
			}
		}
	}
}

// track registers conn for shutdown. It reports false once closeAll has run.
func (r *Receiver) track(conn net.Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conns == nil {
		return false
	}
	r.conns[conn] = struct{}{}
	return true
}

func (r *Receiver) untrack(conn net.Conn) {
	conn.Close()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conns != nil {
		delete(r.conns, conn)
	}
}

func (r *Receiver) closeAll() {
	if r.udp != nil {
		r.udp.Close()
	}
	if r.ln != nil {
		r.ln.Close()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.conns {
		c.Close()
	}
	r.conns = nil
}

// Close releases the socket without serving.
func (r *Receiver) Close() error {
	if r.udp != nil {
		return r.udp.Close()
	}
	return r.ln.Close()
}
