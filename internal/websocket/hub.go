package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"epicli/internal/infrastructure"
	"epicli/pkg/contracts/events"
)

// Message types sent to clients.
const (
	TypeConnection        = string(events.Connection)
	TypeDatasetLoaded     = string(events.DatasetLoaded)
	TypeDatasetLoadFailed = string(events.DatasetLoadFailed)
)

// ErrHubStopped is returned by Broadcast after Stop.
var ErrHubStopped = errors.New("websocket hub stopped")

const broadcastBuffer = 64

// Message is the envelope of every server message.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type outbound struct {
	messageType string
	payload     []byte
}

// Hub maintains the set of active clients and fans messages out to them.
// The client set is owned by the run loop; a stopped hub cannot be
// restarted.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	done       chan struct{}

	logger  *slog.Logger
	metrics *HubMetrics
	now     func() time.Time

	startOnce sync.Once
	stopOnce  sync.Once

	mu      sync.RWMutex
	running bool
	count   int
}

// NewHub creates a hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *HubMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		now:        time.Now,
	}
}

// Start runs the hub loop in a goroutine. Calling it again has no effect.
func (h *Hub) Start() {
	h.startOnce.Do(func() {
		h.mu.Lock()
		h.running = true
		h.mu.Unlock()
		go h.run()
		h.logger.Info("websocket hub started")
	})
}

// Stop ends the hub loop and closes every client's send queue.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.quit)
		h.mu.RLock()
		started := h.running
		h.mu.RUnlock()
		if started {
			<-h.done
		}
		h.logger.Info("websocket hub stopped")
	})
}

// Running reports whether the hub loop is active.
func (h *Hub) Running() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Register adds a client. It returns immediately once the hub is stopped.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.quit:
	}
}

// Unregister removes a client and closes its send queue.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// Broadcast queues a message of the given type for every client. The
// trace ID of ctx travels with the message. When the queue is full the
// message is dropped and logged.
func (h *Hub) Broadcast(ctx context.Context, messageType string, data interface{}) error {
	payload, err := h.encode(ctx, messageType, data)
	if err != nil {
		return err
	}

	select {
	case <-h.quit:
		return ErrHubStopped
	default:
	}

	select {
	case h.broadcast <- outbound{messageType: messageType, payload: payload}:
		return nil
	case <-h.quit:
		return ErrHubStopped
	default:
		h.metrics.messageDropped(ctx, "hub")
		h.logger.WarnContext(ctx, "broadcast queue full, message dropped",
			slog.String("type", messageType))
		return nil
	}
}

func (h *Hub) encode(ctx context.Context, messageType string, data interface{}) ([]byte, error) {
	return json.Marshal(Message{
		Type:      messageType,
		Data:      data,
		TraceID:   infrastructure.GetTraceID(ctx),
		Timestamp: h.now().UTC(),
	})
}

func (h *Hub) run() {
	ctx := context.Background()
	defer func() {
		for c := range h.clients {
			h.remove(ctx, c)
		}
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
		close(h.done)
	}()

	for {
		select {
		case c := <-h.register:
			h.add(ctx, c)

		case c := <-h.unregister:
			if h.clients[c] {
				h.remove(ctx, c)
				h.logger.Info("client disconnected",
					slog.String("client_id", c.id),
					slog.Duration("connected_for", time.Since(c.connectedAt)))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg.payload:
					h.metrics.messageSent(ctx, msg.messageType)
				default:
					// A client that cannot keep up is disconnected.
					h.metrics.messageDropped(ctx, "client")
					h.remove(ctx, c)
					h.logger.Warn("client send queue full, disconnecting",
						slog.String("client_id", c.id))
				}
			}

		case <-h.quit:
			return
		}
	}
}

func (h *Hub) add(ctx context.Context, c *Client) {
	h.clients[c] = true
	h.setCount(len(h.clients))
	h.metrics.clientConnected(ctx)

	h.logger.Info("client connected",
		slog.String("client_id", c.id),
		slog.String("remote_addr", c.remoteAddr),
		slog.Int("clients", len(h.clients)))

	welcome, err := h.encode(infrastructure.WithTraceID(ctx, c.traceID), TypeConnection, events.ConnectionEvent{
		ClientID: c.id,
		Status:   events.StatusConnected,
	})
	if err != nil {
		return
	}
	select {
	case c.send <- welcome:
		h.metrics.messageSent(ctx, TypeConnection)
	default:
	}
}

func (h *Hub) remove(ctx context.Context, c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.setCount(len(h.clients))
	h.metrics.clientDisconnected(ctx)
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}
