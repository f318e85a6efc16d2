// Package websocket pushes record changes to every device a user has open.
package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"budget/internal/logging"
)

const (
	EntityScope       = "scope"
	EntityTransaction = "transaction"
	EntityBill        = "bill"
	EntitySettings    = "settings"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

var ErrHubClosed = errors.New("change feed is shutting down")

// ChangeEvent tells a user's connected devices that one of their records changed.
type ChangeEvent struct {
	Entity string    `json:"entity"`
	Action string    `json:"action"`
	ID     string    `json:"id"`
	Data   any       `json:"data,omitempty"`
	At     time.Time `json:"at"`
}

// Hub fans change events out to the connections of one user at a time.
// Send channels are only closed while holding mu, so Broadcast never
// writes to a closed channel.
type Hub struct {
	mu      sync.RWMutex
	devices map[string]map[*Client]struct{}
	closed  bool
	logger  *logging.Logger
}

type HubOption func(*Hub)

func WithLogger(logger *logging.Logger) HubOption {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger.WithComponent(logging.ComponentWS)
		}
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		devices: make(map[string]map[*Client]struct{}),
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) attach(c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	set, ok := h.devices[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.devices[c.userID] = set
	}
	set[c] = struct{}{}
	h.logger.Debug("device connected", "user_id", c.userID, "devices", len(set))
	return nil
}

// detach is safe to call more than once for the same client.
func (h *Hub) detach(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.devices[c.userID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.devices, c.userID)
	}
	c.closeSend()
}

func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.devices[userID])
}

// Broadcast never blocks: a device whose buffer is full misses the event
// and catches up on its next full reload.
func (h *Hub) Broadcast(userID string, event ChangeEvent) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("unencodable change event", "entity", event.Entity, "error", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	dropped := 0
	for c := range h.devices[userID] {
		select {
		case c.send <- payload:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Debug("change event dropped", "user_id", userID, "entity", event.Entity, "devices", dropped)
	}
}

// Close ends every open feed with a close frame and refuses new ones.
// http.Server.Shutdown does not track upgraded connections, so the server
// calls this on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for userID, set := range h.devices {
		for c := range set {
			c.closeSend()
		}
		delete(h.devices, userID)
	}
}
