package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"contract-ca/internal/audit"
	"contract-ca/internal/core"
	"contract-ca/internal/sims/validation"
)

const (
	writeWait      = 5 * time.Second
	clientBacklog  = 32
	maxClientFrame = 4096
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
}

// Hub pushes events to WebSocket clients as JSON frames. Each client has
// its own drop-oldest backlog so one slow reader cannot hold up the others.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*client
	logger  *slog.Logger
	closed  bool
}

type client struct {
	id     string
	conn   *websocket.Conn
	queue  *core.Mailbox[[]byte]
	cancel context.CancelFunc
}

// NewHub returns an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{clients: make(map[string]*client), logger: logger}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and registers the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade the websocket", "error", err)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &client{
		id:     uuid.NewString(),
		conn:   conn,
		queue:  core.NewMailbox[[]byte](clientBacklog),
		cancel: cancel,
	}
	hello, _ := json.Marshal(map[string]string{"type": "hello", "client": c.id})
	c.queue.Put(hello)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		cancel()
		_ = conn.Close()
		return
	}
	h.clients[c.id] = c
	h.mu.Unlock()
	h.logger.Info("websocket client connected", "client", c.id)

	go h.writeLoop(ctx, c)
	h.readLoop(c)
}

// readLoop discards client frames and unregisters the client once the
// connection fails.
func (h *Hub) readLoop(c *client) {
	c.conn.SetReadLimit(maxClientFrame)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
}

func (h *Hub) writeLoop(ctx context.Context, c *client) {
	for {
		msg, ok := c.queue.Take(ctx)
		if !ok {
			return
		}
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Warn("websocket write failed", "client", c.id, "error", err)
			h.remove(c)
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()
	if !ok {
		return
	}
	c.cancel()
	c.queue.Close()
	_ = c.conn.Close()
	h.logger.Info("websocket client disconnected", "client", c.id)
}

func (h *Hub) broadcast(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("encode broadcast event", "type", ev.Kind, "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		if c.queue.Put(msg) {
			h.logger.Debug("websocket client lagging, dropped oldest frame", "client", c.id)
		}
	}
}

// OnGenerationUpdate implements Port.
func (h *Hub) OnGenerationUpdate(rec validation.GenerationRecord, grid [][][]int) {
	h.broadcast(Event{Kind: KindGeneration, Record: &rec, Grid: grid})
}

// OnAuditEvent implements Port.
func (h *Hub) OnAuditEvent(entry audit.Entry) {
	h.broadcast(Event{Kind: KindAudit, Entry: &entry})
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.remove(c)
	}
}
