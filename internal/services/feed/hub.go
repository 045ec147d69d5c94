// -----------------------------------------------------------------------
// Feed Hub - websocket live feed of analysis records
// -----------------------------------------------------------------------

package feed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/services/analysis"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// sendBufferSize bounds the per-client outbound queue. A client that cannot
// drain this many records is dropped rather than allowed to stall the feed.
const sendBufferSize = 32

// Message is the envelope pushed to every connected client.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// close signals the writer goroutine and tears down the connection. Safe to
// call from multiple goroutines.
func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Hub broadcasts analysis records to websocket clients. Each client gets a
// buffered send channel serviced by its own writer goroutine, so one slow
// consumer never blocks the monitor cycle.
type Hub struct {
	logger arbor.ILogger

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool

	// Unique per startup - clients use it to detect server restarts
	instanceID string
}

// NewHub creates the live feed hub
func NewHub(logger arbor.ILogger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[*client]struct{}),
		instanceID: uuid.New().String(),
	}
}

// HandleWebSocket upgrades the connection and serves the live feed until the
// client disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Int("total", total).Msg("Feed client connected")

	h.enqueue(c, Message{Type: "hello", Payload: map[string]interface{}{
		"server_instance_id": h.instanceID,
		"connected_at":       time.Now().Format(time.RFC3339),
	}})

	common.SafeGo(h.logger, "feedWriter", func() { h.writeLoop(c) })

	// Read loop keeps the connection alive and detects disconnects. Client
	// messages carry no meaning, they are discarded.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("Feed client read error")
			}
			break
		}
	}

	h.drop(c)
}

// Publish pushes one analysis record to every connected client. Satisfies
// the monitor's publisher dependency.
func (h *Hub) Publish(record *analysis.AnalysisRecord) {
	h.broadcast(Message{Type: "analysis_record", Payload: record})
}

// ClientCount reports the number of connected feed clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients and rejects new connections
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}

	h.logger.Debug().Int("dropped", len(clients)).Msg("Feed hub closed")
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("type", msg.Type).Msg("Failed to marshal feed message")
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- data:
		default:
			// Full buffer means the client stopped draining. Drop it so the
			// feed stays current for everyone else.
			h.logger.Warn().Msg("Dropping slow feed client")
			h.drop(c)
		}
	}
}

func (h *Hub) enqueue(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("type", msg.Type).Msg("Failed to marshal feed message")
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) writeLoop(c *client) {
	for {
		select {
		case data := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.drop(c)
				return
			}
		case <-c.done:
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	remaining := len(h.clients)
	h.mu.Unlock()

	c.close()
	if ok {
		h.logger.Debug().Int("remaining", remaining).Msg("Feed client disconnected")
	}
}
