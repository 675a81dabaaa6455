// Package server exposes live run statistics over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/SmitUplenchwar2687/netsender/internal/clock"
)

// Options configures a Server. Nil fields get working defaults.
type Options struct {
	Hub      *Hub
	Registry *prometheus.Registry
	Clock    clock.Clock
	Logger   *zap.Logger
}

// Server serves health, metrics, the live snapshot feed and the dashboard.
type Server struct {
	httpServer *http.Server
	hub        *Hub
	registry   *prometheus.Registry
	clock      clock.Clock
	logger     *zap.Logger
	mux        *http.ServeMux
}

// New creates a stats server for addr.
func New(addr string, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = clock.NewRealClock()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.Hub == nil {
		opts.Hub = NewHub(opts.Logger)
	}

	s := &Server{
		hub:      opts.Hub,
		registry: opts.Registry,
		clock:    opts.Clock,
		logger:   opts.Logger.With(zap.String("component", "server")),
		mux:      http.NewServeMux(),
	}
	s.routes()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           LoggingMiddleware(s.mux, s.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/stats", s.handleStats)
	s.mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	s.mux.HandleFunc("/ws", s.hub.HandleWebSocket)
	s.mux.HandleFunc("/dashboard/", s.handleDashboard)
}

// Hub returns the websocket hub snapshots are broadcast through.
func (s *Server) Hub() *Hub {
	return s.hub
}

// handleRoot serves a welcome message.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "netsender",
		"status":  "running",
		"time":    s.clock.Now().Format(time.RFC3339),
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleStats returns the most recent snapshot and, once the run is over,
// its summary.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, sum := s.hub.Latest()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"snapshot": snap,
		"summary":  sum,
		"clients":  s.hub.ClientCount(),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(DashboardHTML))
}

// Start begins listening. It blocks until the server is shut down.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.StartOnListener(ln)
}

// StartOnListener begins serving on the provided listener.
// Useful for tests that need to pick an ephemeral port.
func (s *Server) StartOnListener(ln net.Listener) error {
	s.logger.Info("stats server listening", zap.String("addr", ln.Addr().String()))
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.httpServer.Shutdown(ctx)
}
