package websockets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/chris/forum-miniapp-store/pkg/notify"
	"github.com/chris/forum-miniapp-store/pkg/store"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// DefaultWriteWait bounds a single write to a client.
	DefaultWriteWait = 10 * time.Second
	// DefaultSendBuffer is the number of messages queued per client.
	DefaultSendBuffer = 64
)

// Hub pushes store changes and toasts to connected UI clients.
// Publishing never waits on a client: each connection has its own queue
// and writer, and a client whose queue is full is dropped.
type Hub struct {
	mu       sync.Mutex
	clients  map[string]*client
	upgrader websocket.Upgrader
	logger   *slog.Logger

	writeWait  time.Duration
	sendBuffer int
}

type client struct {
	conn      Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (c *client) close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// NewHub creates a new Hub. A nil logger uses slog.Default().
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow all connections by default for local development.
				return true
			},
		},
		logger:     logger,
		writeWait:  DefaultWriteWait,
		sendBuffer: DefaultSendBuffer,
	}
}

// Make sure we conform to the interfaces
var (
	_ ConnectionManager = (*Hub)(nil)
	_ Publisher         = (*Hub)(nil)
	_ notify.Notifier   = (*Hub)(nil)
)

// AddConnection registers a client connection and starts its writer.
func (h *Hub) AddConnection(ctx context.Context, connectionID string, conn Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.clients[connectionID]; exists {
		return fmt.Errorf("connection %s already registered", connectionID)
	}
	c := &client{
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
		done: make(chan struct{}),
	}
	h.clients[connectionID] = c
	go h.writeLoop(connectionID, c)
	return nil
}

// RemoveConnection closes and forgets a client connection.
func (h *Hub) RemoveConnection(ctx context.Context, connectionID string) error {
	h.mu.Lock()
	c, ok := h.clients[connectionID]
	delete(h.clients, connectionID)
	h.mu.Unlock()

	if !ok {
		return nil
	}
	return c.close()
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish queues a message for all connected clients.
// Clients whose queue is full are dropped.
func (h *Hub) Publish(ctx context.Context, message Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	var stale []string
	h.mu.Lock()
	for connectionID, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			stale = append(stale, connectionID)
		}
	}
	h.mu.Unlock()

	for _, connectionID := range stale {
		h.logger.Info("slow connection found, deleting", "connectionId", connectionID)
		if err := h.RemoveConnection(ctx, connectionID); err != nil {
			h.logger.Error("failed to delete slow connection", "error", err)
		}
	}

	return nil
}

// writeLoop drains a client's queue until the client is closed.
// A failed or timed out write drops the client.
func (h *Hub) writeLoop(connectionID string, c *client) {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.logger.Error("failed to post to connection", "connectionId", connectionID, "error", err)
				if err := h.RemoveConnection(context.Background(), connectionID); err != nil {
					h.logger.Debug("failed to delete stale connection", "error", err)
				}
				return
			}
		}
	}
}

// Notify publishes a toast message.
func (h *Hub) Notify(ctx context.Context, toast notify.Toast) error {
	return h.Publish(ctx, Message{Type: MessageTypeToast, Payload: toast})
}

// Forward publishes a stateChanged message for every event until events is
// closed or ctx is done.
func (h *Hub) Forward(ctx context.Context, events <-chan store.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			msg := Message{
				Type:    MessageTypeStateChanged,
				Payload: StateChangedPayload{Field: ev.Mutation.Field(), State: ev.State},
			}
			if err := h.Publish(ctx, msg); err != nil {
				h.logger.Error("failed to publish state change", "error", err)
			}
		}
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	connectionID := uuid.New().String()
	h.logger.Info("Client connected", "connectionId", connectionID)

	ctx := r.Context()
	if err := h.AddConnection(ctx, connectionID, conn); err != nil {
		h.logger.Error("failed to save connection ID", "error", err)
		conn.Close()
		return
	}

	defer func() {
		h.logger.Info("Client disconnected", "connectionId", connectionID)
		if err := h.RemoveConnection(ctx, connectionID); err != nil {
			h.logger.Debug("failed to delete connection ID", "error", err)
		}
	}()

	// Clients are not expected to send anything; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("unexpected close error", "error", err)
			}
			break
		}
	}
}
