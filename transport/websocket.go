package transport

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"sortie/entities"
	"sortie/hub"
	"sortie/middleware"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 32
)

// SocketHandler upgrades authenticated requests to WebSocket sessions
// and keeps them subscribed to their user room.
type SocketHandler struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

func NewSocketHandler(h *hub.Hub, allowedOrigins []string) *SocketHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return &SocketHandler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if len(allowed) == 0 {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// Handle serves the socket endpoint. The session is joined to the
// room named after the authenticated user, so every message addressed
// to that user reaches this connection without any client action.
func (h *SocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed for user %s: %v", userID, err)
		return
	}

	s := &session{
		conn: conn,
		send: make(chan entities.Event, sendBufferSize),
		done: make(chan struct{}),
	}

	h.hub.Join(userID, s)
	defer func() {
		h.hub.Leave(userID, s)
		s.close()
	}()

	go s.writePump()

	for {
		var event entities.Event
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error for user %s: %v", userID, err)
			}
			return
		}

		switch event.Event {
		case entities.EventJoinRoom:
			// Sessions are only ever members of their own room; a
			// joinRoom for any other id is ignored.
			var roomID string
			if err := json.Unmarshal(event.Payload, &roomID); err != nil {
				continue
			}
			if roomID == userID {
				h.hub.Join(userID, s)
			}
		case entities.EventJoinConversation:
			// Advisory only: fan-out is keyed on user rooms, not
			// conversation rooms, so there is nothing to subscribe.
		default:
			log.Printf("websocket: ignoring event %q from user %s", event.Event, userID)
		}
	}
}

type session struct {
	conn *websocket.Conn
	send chan entities.Event
	done chan struct{}
	once sync.Once
}

// Deliver queues an event for the session without blocking the hub. A
// session that cannot keep up loses events rather than stalling
// delivery to everyone else.
func (s *session) Deliver(event entities.Event) {
	select {
	case s.send <- event:
	case <-s.done:
	default:
		log.Print("websocket: session send buffer full, dropping event")
	}
}

func (s *session) writePump() {
	for {
		select {
		case event := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(event); err != nil {
				s.close()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}
