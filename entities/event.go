package entities

import (
	"encoding/json"
	"fmt"
)

// Socket event names used by the chat surface.
const (
	EventNewMessage       = "newMessage"
	EventJoinRoom         = "joinRoom"
	EventJoinConversation = "joinConversation"
)

// Event is the envelope exchanged over the realtime channel.
type Event struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent wraps a payload into an Event envelope.
func NewEvent(name string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", name, err)
	}

	return Event{Event: name, Payload: raw}, nil
}
