// Package transport opens the UDP or TCP channel records are written to.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultSendBuffer is the SO_SNDBUF size requested for every socket.
	DefaultSendBuffer = 8 * 1024 * 1024
	// AdvisorySendBuffer is the effective size below which a warning is logged.
	AdvisorySendBuffer = 2000000
	// DefaultLinger is the TCP SO_LINGER timeout in seconds.
	DefaultLinger = 30
	// DefaultDialTimeout bounds the TCP connect.
	DefaultDialTimeout = 10 * time.Second
	// DefaultBindAddr is the local address used when binding is requested.
	DefaultBindAddr = ":0"
)

// Kind selects the transport protocol.
type Kind int

const (
	UDP Kind = iota
	TCP
)

func (k Kind) String() string {
	switch k {
	case UDP:
		return "udp"
	case TCP:
		return "tcp"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps "udp" or "tcp" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "udp":
		return UDP, nil
	case "tcp":
		return TCP, nil
	default:
		return 0, fmt.Errorf("unknown transport %q, must be udp or tcp", s)
	}
}

// Config describes the destination and socket options.
type Config struct {
	Kind        Kind
	Address     string
	Port        int
	Bind        bool
	BindAddr    string
	SendBuffer  int
	Linger      int
	DialTimeout time.Duration
}

// Endpoint returns the destination as host:port.
func (c Config) Endpoint() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

func (c Config) withDefaults() Config {
	if c.SendBuffer <= 0 {
		c.SendBuffer = DefaultSendBuffer
	}
	if c.Linger <= 0 {
		c.Linger = DefaultLinger
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.BindAddr == "" {
		c.BindAddr = DefaultBindAddr
	}
	return c
}

// Channel is an open transport. It is not safe for concurrent Send calls.
type Channel struct {
	cfg    Config
	logger *zap.Logger

	udp *net.UDPConn
	dst *net.UDPAddr
	tcp *net.TCPConn

	sndbuf int

	closeOnce sync.Once
	closeErr  error
}

// Open creates the socket described by cfg. For TCP it connects before
// returning.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Channel, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	ch := &Channel{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "transport"), zap.Stringer("kind", cfg.Kind)),
	}

	var err error
	switch cfg.Kind {
	case UDP:
		err = ch.openUDP(ctx)
	case TCP:
		err = ch.openTCP(ctx)
	default:
		err = fmt.Errorf("unsupported transport %s", cfg.Kind)
	}
	if err != nil {
		return nil, err
	}

	ch.tuneSendBuffer()
	ch.logger.Info("transport open",
		zap.String("endpoint", cfg.Endpoint()),
		zap.String("local", ch.LocalAddr().String()),
	)
	return ch, nil
}

func (c *Channel) openUDP(ctx context.Context) error {
	dst, err := net.ResolveUDPAddr("udp", c.cfg.Endpoint())
	if err != nil {
		return fmt.Errorf("resolving %s: %w", c.cfg.Endpoint(), err)
	}

	local := ""
	if c.cfg.Bind {
		local = c.cfg.BindAddr
	}
	var lc net.ListenConfig
	pc, err := lc.ListenPacket(ctx, "udp", local)
	if err != nil {
		return fmt.Errorf("opening udp socket: %w", err)
	}
	conn, ok := pc.(*net.UDPConn)
	if !ok {
		pc.Close()
		return fmt.Errorf("opening udp socket: unexpected %T", pc)
	}
	c.udp = conn
	c.dst = dst
	return nil
}

func (c *Channel) openTCP(ctx context.Context) error {
	d := net.Dialer{Timeout: c.cfg.DialTimeout}
	if c.cfg.Bind {
		local, err := net.ResolveTCPAddr("tcp", c.cfg.BindAddr)
		if err != nil {
			return fmt.Errorf("resolving bind address %s: %w", c.cfg.BindAddr, err)
		}
		d.LocalAddr = local
	}

	conn, err := d.DialContext(ctx, "tcp", c.cfg.Endpoint())
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.cfg.Endpoint(), err)
	}
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		conn.Close()
		return fmt.Errorf("connecting to %s: unexpected %T", c.cfg.Endpoint(), conn)
	}
	if err := tcp.SetLinger(c.cfg.Linger); err != nil {
		c.logger.Warn("setting linger", zap.Error(err))
	}
	c.tcp = tcp
	return nil
}

type bufferedConn interface {
	syscall.Conn
	SetWriteBuffer(bytes int) error
}

func (c *Channel) conn() bufferedConn {
	if c.tcp != nil {
		return c.tcp
	}
	return c.udp
}

func (c *Channel) tuneSendBuffer() {
	conn := c.conn()
	if err := conn.SetWriteBuffer(c.cfg.SendBuffer); err != nil {
		c.logger.Warn("setting send buffer", zap.Int("requested", c.cfg.SendBuffer), zap.Error(err))
	}

	size, err := sendBufferSize(conn)
	if err != nil {
		if !errors.Is(err, errors.ErrUnsupported) {
			c.logger.Warn("reading send buffer size", zap.Error(err))
		}
		return
	}
	c.sndbuf = size
	c.logger.Info("socket send buffer", zap.Int("bytes", size))
	if size < AdvisorySendBuffer {
		c.logger.Warn("send buffer is small, raise the system limit with: sudo sysctl -w net.core.wmem_max=2000000",
			zap.Int("bytes", size),
			zap.Int("recommended", AdvisorySendBuffer),
		)
	}
}

// Send writes rec as a single frame. UDP write failures are logged and
// otherwise ignored; TCP write failures are returned.
func (c *Channel) Send(rec []byte) (int, error) {
	if c.tcp != nil {
		n, err := c.tcp.Write(rec)
		if err != nil {
			return n, fmt.Errorf("tcp send: %w", err)
		}
		return n, nil
	}

	if _, err := c.udp.WriteToUDP(rec, c.dst); err != nil {
		c.logger.Debug("udp send failed", zap.Int("bytes", len(rec)), zap.Error(err))
	}
	return len(rec), nil
}

// SendBufferSize returns the effective SO_SNDBUF, or 0 if it could not be read.
func (c *Channel) SendBufferSize() int {
	return c.sndbuf
}

// LocalAddr returns the local socket address.
func (c *Channel) LocalAddr() net.Addr {
	if c.tcp != nil {
		return c.tcp.LocalAddr()
	}
	return c.udp.LocalAddr()
}

// Config returns the effective configuration.
func (c *Channel) Config() Config {
	return c.cfg
}

// Close releases the socket. Calling it more than once is safe.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		if c.tcp != nil {
			c.closeErr = c.tcp.Close()
		} else {
			c.closeErr = c.udp.Close()
		}
		c.logger.Debug("transport closed")
	})
	return c.closeErr
}
