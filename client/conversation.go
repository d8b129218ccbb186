package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"sortie/entities"
	"sortie/service"
)

// ChatMessage is one entry of the conversation view, oldest first. A
// pending entry is an optimistic send that the server has not echoed
// back yet.
type ChatMessage struct {
	ID        string
	Text      string
	Mine      bool
	CreatedAt time.Time
	Pending   bool

	corrID string
}

// Conversation maintains the message list of one peer-to-peer thread
// and reconciles optimistic sends against the server echo.
type Conversation struct {
	api    API
	selfID string
	peerID string
	id     string

	mu       sync.Mutex
	messages []ChatMessage
	closed   bool
}

func NewConversation(api API, selfID, peerID string) *Conversation {
	return &Conversation{
		api:    api,
		selfID: selfID,
		peerID: peerID,
		id:     service.ConversationID(selfID, peerID),
	}
}

func (c *Conversation) ID() string {
	return c.id
}

// Load replaces the message list with the server history. The server
// returns newest first; the view wants oldest first.
func (c *Conversation) Load(ctx context.Context) error {
	history, err := c.api.History(ctx, c.id)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	messages := make([]ChatMessage, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		messages = append(messages, ChatMessage{
			ID:        m.ID,
			Text:      m.Content,
			Mine:      m.SenderID == c.selfID,
			CreatedAt: m.CreatedAt,
			corrID:    m.CorrelationID,
		})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.messages = messages
	return nil
}

// Send appends a pending entry immediately, then posts the message.
// The entry stays pending until the server echo arrives over the
// socket; a failed post is surfaced to the caller with the entry left
// pending so the view can flag it.
func (c *Conversation) Send(ctx context.Context, text string) error {
	corrID := uuid.NewString()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("conversation is closed")
	}
	c.messages = append(c.messages, ChatMessage{
		ID:        "pending-" + uuid.NewString(),
		Text:      text,
		Mine:      true,
		CreatedAt: time.Now(),
		Pending:   true,
		corrID:    corrID,
	})
	c.mu.Unlock()

	_, err := c.api.Send(ctx, entities.CreateMessageRequest{
		SenderID:      c.selfID,
		ReceiverID:    c.peerID,
		Content:       text,
		CorrelationID: corrID,
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// Apply reconciles an incoming newMessage event. A message from the
// local user confirms a pending entry in place instead of appending a
// duplicate; a message from the peer appends unless its id was already
// seen.
func (c *Conversation) Apply(message entities.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || message.ConversationID != c.id {
		return
	}

	if message.SenderID == c.selfID {
		if i := c.findPending(message); i >= 0 {
			c.messages[i].ID = message.ID
			c.messages[i].CreatedAt = message.CreatedAt
			c.messages[i].Pending = false
			return
		}
		// No pending entry, echo from another device: fall through and
		// append like a peer message.
	}

	for _, m := range c.messages {
		if m.ID == message.ID {
			return
		}
	}

	c.messages = append(c.messages, ChatMessage{
		ID:        message.ID,
		Text:      message.Content,
		Mine:      message.SenderID == c.selfID,
		CreatedAt: message.CreatedAt,
		corrID:    message.CorrelationID,
	})
}

// findPending locates the pending entry an echo confirms: by
// correlation id when the echo carries one, otherwise the oldest
// pending entry with the same text.
func (c *Conversation) findPending(message entities.Message) int {
	if message.CorrelationID != "" {
		for i, m := range c.messages {
			if m.Pending && m.corrID == message.CorrelationID {
				return i
			}
		}
		return -1
	}

	for i, m := range c.messages {
		if m.Pending && m.Text == message.Content {
			return i
		}
	}
	return -1
}

// Close stops all further mutations; Apply, Send and a late-resolving
// Load no longer touch the message list.
func (c *Conversation) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Messages returns a snapshot of the view, oldest first.
func (c *Conversation) Messages() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ChatMessage(nil), c.messages...)
}
