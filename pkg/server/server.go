package server

import (
	"go.uber.org/zap"

	internalserver "github.com/SmitUplenchwar2687/netsender/internal/server"
)

// Server serves health, Prometheus metrics, the live snapshot feed and the
// dashboard for a send run.
type Server = internalserver.Server

// Options configures optional server features.
type Options = internalserver.Options

// Hub manages WebSocket clients and broadcasts run statistics.
type Hub = internalserver.Hub

// Message is the envelope pushed to WebSocket clients.
type Message = internalserver.Message

// DashboardHTML is the embedded single-page dashboard.
const DashboardHTML = internalserver.DashboardHTML

// New creates a new stats server.
func New(addr string, opts Options) *Server {
	return internalserver.New(addr, opts)
}

// NewHub creates a new WebSocket hub. A nil logger discards output.
func NewHub(logger *zap.Logger) *Hub {
	return internalserver.NewHub(logger)
}
