package entities

import "time"

// Message is the canonical message shape shared by the store, the REST
// surface and the socket events. Content is ciphertext everywhere except
// inside a newMessage event, which carries the original plaintext.
type Message struct {
	ID             string    `json:"_id" db:"id"`
	ConversationID string    `json:"conversation_id" db:"conversation_id"`
	SenderID       string    `json:"sender_id" db:"sender_id"`
	ReceiverID     string    `json:"receiver_id" db:"receiver_id"`
	Content        string    `json:"content" db:"content"`
	CorrelationID  string    `json:"correlation_id,omitempty" db:"correlation_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	Read           bool      `json:"read" db:"read"`
}

// CreateMessageRequest is the body of POST /messages/. Content is
// plaintext here; the server encrypts it before persisting. The
// conversation id is accepted for compatibility but recomputed
// server-side from the participant ids.
type CreateMessageRequest struct {
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	ReceiverID     string `json:"receiver_id"`
	Content        string `json:"content"`
	CorrelationID  string `json:"correlation_id,omitempty"`
}
