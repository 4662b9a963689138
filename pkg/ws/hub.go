package ws

import (
	"sync"
	"time"

	"GrainHero/pkg/zlog"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub fans notifications out to the live inbox connections of a tenant.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	if c == nil || c.tenantID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.tenantID]
	if set == nil {
		set = make(map[*Client]struct{})
		h.clients[c.tenantID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) Unregister(c *Client) {
	if c == nil || c.tenantID == "" {
		return
	}
	h.mu.Lock()
	set := h.clients[c.tenantID]
	if set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.tenantID)
		}
	}
	h.mu.Unlock()
	c.Close()
}

// Online reports the number of open connections for tenantID.
func (h *Hub) Online(tenantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[tenantID])
}

// Send delivers payload to every connection of tenantID. A client whose
// buffer is full is dropped. It reports whether at least one client took it.
func (h *Hub) Send(tenantID string, payload []byte) bool {
	if tenantID == "" || len(payload) == 0 {
		return false
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[tenantID]))
	for c := range h.clients[tenantID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return false
	}

	ok := false
	for _, c := range targets {
		if c.offer(payload) {
			ok = true
			continue
		}
		zlog.Warn("ws client buffer full, dropping connection",
			zap.String("tenant_id", tenantID), zap.String("user_id", c.userID))
		h.Unregister(c)
	}
	return ok
}

type Client struct {
	tenantID string
	userID   string
	conn     *websocket.Conn
	send     chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(tenantID, userID string, conn *websocket.Conn) *Client {
	return &Client{
		tenantID: tenantID,
		userID:   userID,
		conn:     conn,
		send:     make(chan []byte, 64),
	}
}

func (c *Client) offer(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *Client) WritePump() {
	if c.conn == nil {
		return
	}
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			zlog.Error("ws write failed", zap.String("tenant_id", c.tenantID), zap.Error(err))
			return
		}
	}
}

// ReadPump drains client frames until the connection closes. The inbox is
// server-push only, so frames are discarded.
func (c *Client) ReadPump(onClose func()) {
	defer onClose()
	if c.conn == nil {
		return
	}
	c.conn.SetReadLimit(4096)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Messages exposes the outbound buffer; used by tests that run without a
// real connection.
func (c *Client) Messages() <-chan []byte {
	return c.send
}
