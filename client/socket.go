package client

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"sortie/entities"
)

// Socket is the realtime side of the client: it feeds incoming
// newMessage events into a Conversation.
type Socket struct {
	conn *websocket.Conn
}

func DialSocket(url, token string) (*Socket, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial socket: %w", err)
	}

	return &Socket{conn: conn}, nil
}

// JoinConversation announces interest in a conversation. Delivery is
// keyed on the user room the server joined us to, so this is advisory.
func (s *Socket) JoinConversation(conversationID string) error {
	event, err := entities.NewEvent(entities.EventJoinConversation, conversationID)
	if err != nil {
		return err
	}
	return s.conn.WriteJSON(event)
}

// Listen consumes events until the socket closes, applying each
// newMessage to the conversation.
func (s *Socket) Listen(conversation *Conversation) error {
	for {
		var event entities.Event
		if err := s.conn.ReadJSON(&event); err != nil {
			return fmt.Errorf("socket read failed: %w", err)
		}

		if event.Event != entities.EventNewMessage {
			continue
		}

		var message entities.Message
		if err := json.Unmarshal(event.Payload, &message); err != nil {
			log.Printf("Ignoring undecodable newMessage event: %v", err)
			continue
		}

		conversation.Apply(message)
	}
}

func (s *Socket) Close() error {
	return s.conn.Close()
}
