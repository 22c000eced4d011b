package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DecisionEvent describes websocket payloads emitted as decisions land.
type DecisionEvent struct {
	Type      string       `json:"type"`
	Decision  *DecisionDTO `json:"decision,omitempty"`
	Message   string       `json:"message,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// wsClient wraps a websocket connection with write locking.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// DecisionNotifier tracks active websocket clients and broadcasts decision
// events to dashboard consumers.
type DecisionNotifier struct {
	mu        sync.Mutex
	clients   map[*wsClient]struct{}
	lastEvent *DecisionEvent
}

// NewDecisionNotifier constructs a notifier instance.
func NewDecisionNotifier() *DecisionNotifier {
	return &DecisionNotifier{clients: make(map[*wsClient]struct{})}
}

// Register attaches a websocket connection and replays the most recent event
// so late joiners see current state.
func (n *DecisionNotifier) Register(conn *websocket.Conn) *wsClient {
	client := &wsClient{conn: conn}
	n.mu.Lock()
	n.clients[client] = struct{}{}
	last := n.lastEvent
	n.mu.Unlock()

	if last != nil {
		_ = client.writeJSON(*last)
	}
	return client
}

// Unregister removes the websocket client and closes the socket.
func (n *DecisionNotifier) Unregister(client *wsClient) {
	if client == nil {
		return
	}
	n.mu.Lock()
	delete(n.clients, client)
	n.mu.Unlock()
	_ = client.conn.Close()
}

// Broadcast sends the supplied event to all registered clients, dropping any
// client whose write fails.
func (n *DecisionNotifier) Broadcast(event DecisionEvent) {
	event.Timestamp = time.Now().UTC()

	n.mu.Lock()
	snapshot := event
	n.lastEvent = &snapshot
	for client := range n.clients {
		if err := client.writeJSON(event); err != nil {
			delete(n.clients, client)
			_ = client.conn.Close()
		}
	}
	n.mu.Unlock()
}

func (c *wsClient) writeJSON(payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(payload)
}
