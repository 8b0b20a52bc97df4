package ws

import (
	"sync"
)

// Hub tracks connected clients and room membership. Rooms are addressed by
// plain entity-id strings (user id, group id, mentee id, guardian id); a
// client may hold several sockets at once.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[string]*Client // userID -> socketID -> client
	rooms   map[string]map[string]bool    // roomID -> userID set
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[string]*Client),
		rooms:   make(map[string]map[string]bool),
	}
}

func (h *Hub) AddClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.UserID]; !ok {
		h.clients[c.UserID] = make(map[string]*Client)
	}
	h.clients[c.UserID][c.SocketID] = c
}

// RemoveClient drops a socket; reports whether the user has no sockets left.
func (h *Hub) RemoveClient(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[c.UserID]; ok {
		delete(conns, c.SocketID)
		if len(conns) > 0 {
			return false
		}
		delete(h.clients, c.UserID)
	}
	for _, members := range h.rooms {
		delete(members, c.UserID)
	}
	return true
}

func (h *Hub) JoinRoom(room, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[string]bool)
	}
	h.rooms[room][userID] = true
}

func (h *Hub) LeaveRoom(room, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, userID)
	}
}

// Broadcast pushes a payload to every socket of every member of a room. Order
// within one room is preserved by each client's serialized send channel;
// clients that cannot keep up drop events.
func (h *Hub) Broadcast(room string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	for userID := range members {
		for _, c := range h.clients[userID] {
			c.Send(payload)
		}
	}
}
