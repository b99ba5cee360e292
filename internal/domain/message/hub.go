package message

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/vendora/vendora-api/internal/pkg/metrics"
)

const userEventsChannel = "ws:user_events"

// Event is the frame pushed to websocket clients.
type Event struct {
	Type    string      `json:"type"`
	At      time.Time   `json:"at"`
	Payload interface{} `json:"payload,omitempty"`
}

type userEventMessage struct {
	UserID           string          `json:"user_id"`
	Payload          json.RawMessage `json:"payload"`
	SenderInstanceID string          `json:"sender_instance_id"`
}

// Connection is one websocket client of a user.
type Connection struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte
}

// Hub fans realtime events out to connected users. With Redis, events
// published on one instance reach clients connected to any instance.
type Hub struct {
	connections map[uuid.UUID]map[*Connection]bool
	mu          sync.RWMutex

	redis  *redis.Client
	pubsub *redis.PubSub

	register   chan *Connection
	unregister chan *Connection

	ctx    context.Context
	cancel context.CancelFunc

	instanceID string
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewHub creates a hub. redisClient may be nil for a single instance.
func NewHub(redisClient *redis.Client, m *metrics.Metrics) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		connections: make(map[uuid.UUID]map[*Connection]bool),
		redis:       redisClient,
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		ctx:         ctx,
		cancel:      cancel,
		instanceID:  uuid.NewString(),
		metrics:     m,
		now:         time.Now,
	}
	if redisClient != nil {
		h.pubsub = redisClient.Subscribe(ctx, userEventsChannel)
	}
	return h
}

// Run processes registrations until Shutdown. Call in a goroutine.
func (h *Hub) Run() {
	if h.pubsub != nil {
		go h.runRedisSubscriber()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.connections[conn.UserID] == nil {
				h.connections[conn.UserID] = make(map[*Connection]bool)
			}
			h.connections[conn.UserID][conn] = true
			h.mu.Unlock()
			h.metrics.ConnectionOpened(1)
			log.Debug().Str("user_id", conn.UserID.String()).Msg("User connected to WebSocket")

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.connections[conn.UserID]; ok {
				if conns[conn] {
					delete(conns, conn)
					close(conn.Send)
					h.metrics.ConnectionOpened(-1)
				}
				if len(conns) == 0 {
					delete(h.connections, conn.UserID)
				}
			}
			h.mu.Unlock()
			log.Debug().Str("user_id", conn.UserID.String()).Msg("User disconnected from WebSocket")
		}
	}
}

func (h *Hub) runRedisSubscriber() {
	ch := h.pubsub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleUserEventPayload(msg.Payload)
		}
	}
}

func (h *Hub) handleUserEventPayload(payload string) {
	var event userEventMessage
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return
	}
	if event.SenderInstanceID == h.instanceID {
		return
	}
	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return
	}
	h.sendLocal(userID, event.Payload)
}

// Register and Unregister return without effect once the hub has shut down.
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.ctx.Done():
	}
}

// Publish delivers event to every connection of userID on every instance.
func (h *Hub) Publish(ctx context.Context, userID uuid.UUID, event string, payload interface{}) error {
	data, err := json.Marshal(Event{Type: event, At: h.now().UTC(), Payload: payload})
	if err != nil {
		return err
	}

	h.sendLocal(userID, data)
	if h.redis == nil {
		return nil
	}

	envelope, err := json.Marshal(userEventMessage{
		UserID:           userID.String(),
		Payload:          data,
		SenderInstanceID: h.instanceID,
	})
	if err != nil {
		return err
	}
	return h.redis.Publish(ctx, userEventsChannel, envelope).Err()
}

func (h *Hub) sendLocal(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.connections[userID] {
		select {
		case conn.Send <- data:
			h.metrics.EventDelivered(true)
		default:
			h.metrics.EventDelivered(false)
			log.Warn().Str("user_id", userID.String()).Msg("WebSocket send buffer full")
		}
	}
}

// ConnectionCount returns the number of local connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.connections {
		total += len(conns)
	}
	return total
}

// Shutdown stops Run and the Redis subscription.
func (h *Hub) Shutdown() {
	h.cancel()
	if h.pubsub != nil {
		_ = h.pubsub.Close()
	}
}
