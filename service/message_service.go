package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"sortie/encryption"
	"sortie/entities"
	"sortie/repository"
)

var (
	ErrMissingParticipant = errors.New("sender and receiver are required")
	ErrStore              = errors.New("message store failure")
)

// EventPublisher is the fan-out primitive the message service publishes
// to. Rooms are keyed by user id.
type EventPublisher interface {
	Publish(roomID string, event entities.Event)
}

type MessageService interface {
	Create(ctx context.Context, req entities.CreateMessageRequest) (*entities.Message, error)
	History(ctx context.Context, conversationID string) ([]entities.Message, error)
}

type messageService struct {
	messages repository.MessageRepository
	cipher   *encryption.Cipher
	events   EventPublisher
}

func NewMessageService(messages repository.MessageRepository, cipher *encryption.Cipher, events EventPublisher) *messageService {
	return &messageService{messages: messages, cipher: cipher, events: events}
}

// Create encrypts and persists a message, then fans out a
// plaintext-bearing newMessage event to the sender's and receiver's
// rooms. Fan-out only happens after persistence succeeds and is
// fire-and-forget.
func (ms *messageService) Create(ctx context.Context, req entities.CreateMessageRequest) (*entities.Message, error) {
	if req.SenderID == "" || req.ReceiverID == "" {
		return nil, ErrMissingParticipant
	}

	// The conversation id is derived state: recompute it instead of
	// trusting the client-supplied value.
	conversationID := ConversationID(req.SenderID, req.ReceiverID)

	token, err := ms.cipher.Encrypt(req.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt content: %w", err)
	}

	message := &entities.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       req.SenderID,
		ReceiverID:     req.ReceiverID,
		Content:        token,
		CorrelationID:  req.CorrelationID,
		CreatedAt:      time.Now().UTC(),
	}

	if err := ms.messages.Save(ctx, message); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	// The socket event carries the plaintext; the stored row and the
	// REST response keep the ciphertext.
	broadcast := *message
	broadcast.Content = req.Content

	event, err := entities.NewEvent(entities.EventNewMessage, broadcast)
	if err != nil {
		log.Printf("Failed to build newMessage event: %v", err)
		return message, nil
	}

	ms.events.Publish(message.ReceiverID, event)
	ms.events.Publish(message.SenderID, event)

	return message, nil
}

// History returns the stored messages of a conversation, ciphertext
// content, newest first.
func (ms *messageService) History(ctx context.Context, conversationID string) ([]entities.Message, error) {
	return ms.messages.History(ctx, conversationID)
}
