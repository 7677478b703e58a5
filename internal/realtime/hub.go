// Package realtime pushes document events to connected browser sessions over
// websockets, scoped per tenant.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"erpdesk/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
	broadcastQueue = 256
)

var errHubClosed = errors.New("realtime: hub stopped")

type envelope struct {
	tenantID uuid.UUID
	payload  []byte
}

// Client is one websocket connection bound to a tenant.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	tenantID uuid.UUID
	userID   uuid.UUID
	send     chan []byte
}

// Hub tracks connected clients per tenant and fans events out to them.
type Hub struct {
	upgrader   websocket.Upgrader
	clients    map[uuid.UUID]map[*Client]struct{}
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        zerolog.Logger
}

// NewHub creates a Hub. Upgrades are accepted from allowedOrigins only; an
// empty list accepts same-host requests, which is gorilla's default check.
func NewHub(allowedOrigins []string, log zerolog.Logger) *Hub {
	h := &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		broadcast:  make(chan envelope, broadcastQueue),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
	h.upgrader = websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024}
	if len(allowedOrigins) > 0 {
		allowed := make(map[string]bool, len(allowedOrigins))
		for _, o := range allowedOrigins {
			allowed[o] = true
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed[origin]
		}
	}
	return h
}

// Run dispatches registrations and broadcasts until ctx is done, then closes
// every connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for _, set := range h.clients {
				for client := range set {
					close(client.send)
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]struct{})
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.tenantID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.tenantID] = set
			}
			set[client] = struct{}{}
			h.mu.Unlock()
			h.log.Debug().Str("tenant_id", client.tenantID.String()).Str("user_id", client.userID.String()).Msg("realtime: client connected")
		case client := <-h.unregister:
			h.remove(client)
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[msg.tenantID] {
				select {
				case client.send <- msg.payload:
				default:
					// Slow consumer; drop it rather than stall the tenant.
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	set, ok := h.clients[client.tenantID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.tenantID)
	}
	h.log.Debug().Str("tenant_id", client.tenantID.String()).Msg("realtime: client disconnected")
}

// Publish queues event for the clients of its tenant. It never blocks; when
// the queue is full the event is dropped.
func (h *Hub) Publish(event domain.DocumentEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Msg("realtime: marshal event")
		return
	}
	select {
	case h.broadcast <- envelope{tenantID: event.TenantID, payload: payload}:
	default:
		h.log.Warn().
			Str("tenant_id", event.TenantID.String()).
			Str("document_id", event.DocumentID.String()).
			Msg("realtime: broadcast queue full, event dropped")
	}
}

// Clients returns how many connections a tenant currently has.
func (h *Hub) Clients(tenantID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[tenantID])
}

// Serve upgrades the request and streams the tenant's events to it. The
// caller has already authenticated the request.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, tenantID, userID uuid.UUID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	client := &Client{
		hub:      h,
		conn:     conn,
		tenantID: tenantID,
		userID:   userID,
		send:     make(chan []byte, sendBuffer),
	}
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return errHubClosed
	}

	go client.writePump()
	go client.readPump()
	return nil
}

// writePump writes queued events and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so pongs and close frames are processed.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug().Err(err).Msg("realtime: read failed")
			}
			return
		}
	}
}
