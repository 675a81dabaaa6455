package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/SmitUplenchwar2687/netsender/internal/stats"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local dev tool.
	},
}

// Message is the envelope pushed to websocket clients.
type Message struct {
	Type string `json:"type"` // "window" or "final"
	Data any    `json:"data"`
}

// Hub manages WebSocket clients and broadcasts run statistics. It is a
// stats.Sink.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]bool

	latestMu sync.RWMutex
	snapshot *stats.Snapshot
	summary  *stats.Summary
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:  logger.With(zap.String("component", "hub")),
		clients: make(map[*websocket.Conn]bool),
	}
}

// HandleWebSocket upgrades the HTTP connection and registers the client.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	// Read loop keeps the connection alive and notices disconnects.
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// Window records and broadcasts a snapshot.
func (h *Hub) Window(s stats.Snapshot) error {
	h.latestMu.Lock()
	h.snapshot = &s
	h.latestMu.Unlock()

	h.Broadcast(Message{Type: "window", Data: s})
	return nil
}

// Final records and broadcasts the run summary.
func (h *Hub) Final(s stats.Summary) error {
	h.latestMu.Lock()
	h.summary = &s
	h.latestMu.Unlock()

	h.Broadcast(Message{Type: "final", Data: s})
	return nil
}

// Latest returns the last snapshot and summary seen, either may be nil.
func (h *Hub) Latest() (*stats.Snapshot, *stats.Summary) {
	h.latestMu.RLock()
	defer h.latestMu.RUnlock()
	return h.snapshot, h.summary
}

// Broadcast sends v as JSON to all connected WebSocket clients.
func (h *Hub) Broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Warn("websocket marshal failed", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("websocket write failed", zap.Error(err))
			conn.Close()
			// The read goroutine removes it from the set.
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
