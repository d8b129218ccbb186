package hub

import (
	"sync"

	"sortie/entities"
)

// Session is one connected realtime client. Deliver must not block; slow
// consumers drop events rather than stall a publisher.
type Session interface {
	Deliver(event entities.Event)
}

// Hub is a room-based publish mechanism. Rooms are keyed by user id, so
// every session of a user receives events published to that user.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[Session]struct{}
}

func New() *Hub {
	return &Hub{
		rooms: make(map[string]map[Session]struct{}),
	}
}

// Join subscribes a session to a room. Joining a room twice has no
// additional effect.
func (h *Hub) Join(roomID string, s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomID]
	if !ok {
		room = make(map[Session]struct{})
		h.rooms[roomID] = room
	}

	room[s] = struct{}{}
}

// Leave removes a session from a room, dropping the room once empty.
func (h *Hub) Leave(roomID string, s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomID]
	if !ok {
		return
	}

	delete(room, s)
	if len(room) == 0 {
		delete(h.rooms, roomID)
	}
}

// Publish delivers an event to every session currently in the room.
// Fire-and-forget: nothing is queued for sessions that are not
// connected, and no delivery is acknowledged.
func (h *Hub) Publish(roomID string, event entities.Event) {
	h.mu.RLock()
	sessions := make([]Session, 0, len(h.rooms[roomID]))
	for s := range h.rooms[roomID] {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		s.Deliver(event)
	}
}

// RoomSize reports how many sessions are subscribed to a room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[roomID])
}
