// internal/httpserver/hub.go
//
// Connection registry for the websocket transport and the room engine's
// outbound side.

package httpserver

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/rooms"
)

// Hub tracks live websocket clients by connection id and implements
// rooms.Broadcaster. Send is called from the room engine goroutine and never
// blocks on a slow client.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	delete(h.clients, id)
	h.mu.Unlock()
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send pushes a room-state message to one client.
func (h *Hub) Send(connID string, snap rooms.Snapshot) {
	h.mu.RLock()
	c := h.clients[connID]
	h.mu.RUnlock()
	if c == nil {
		return
	}
	msg, err := json.Marshal(outbound{Type: msgRoomState, Data: snap})
	if err != nil {
		log.Error().Err(err).Str("room", snap.ID).Msg("encode room state")
		return
	}
	c.enqueue(msg)
}
