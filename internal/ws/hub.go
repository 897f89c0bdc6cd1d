package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/syncpad/syncpad/pkg/logger"
	"github.com/syncpad/syncpad/pkg/metrics"
)

// envelope is the wire frame: an event name plus its JSON payload.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Client is one live websocket connection. Outbound frames go through the
// buffered Send channel so the engine never blocks on a slow peer.
type Client struct {
	ID   string
	conn *websocket.Conn
	Send chan []byte
}

// Hub tracks connected clients by connection id and implements the engine's
// Sender: point-to-point and broadcast delivery, fire-and-forget.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
}

// remove detaches the client and closes its send channel, waking the write
// pump. Safe against concurrent Send calls: delivery holds the read lock.
func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.ID]; ok {
		delete(h.clients, c.ID)
		close(c.Send)
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send delivers one event to one connection. Unknown connections and full
// send buffers drop the frame; a disconnect racing a broadcast is best-effort
// by design of the transport.
func (h *Hub) Send(sessionID, event string, payload any) {
	frame, err := json.Marshal(outEnvelope{Event: event, Data: payload})
	if err != nil {
		logger.Errorf("marshal %s frame: %v", event, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[sessionID]
	if !ok {
		return
	}
	select {
	case c.Send <- frame:
		metrics.BroadcastsSent.Inc()
	default:
		logger.Warnf("dropping %s frame for %s: send buffer full", event, sessionID)
	}
}

// SendAll delivers one event to every connection.
func (h *Hub) SendAll(event string, payload any) {
	frame, err := json.Marshal(outEnvelope{Event: event, Data: payload})
	if err != nil {
		logger.Errorf("marshal %s frame: %v", event, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.clients {
		select {
		case c.Send <- frame:
			metrics.BroadcastsSent.Inc()
		default:
			logger.Warnf("dropping %s frame for %s: send buffer full", event, id)
		}
	}
}
