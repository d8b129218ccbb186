package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"sortie/entities"
)

type MessageRepository interface {
	Save(ctx context.Context, message *entities.Message) error
	// History returns every message of a conversation, newest first.
	History(ctx context.Context, conversationID string) ([]entities.Message, error)
	// Latest returns the most recent message of a conversation, or nil
	// when the conversation has no message yet.
	Latest(ctx context.Context, conversationID string) (*entities.Message, error)
}

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) *messageRepository {
	return &messageRepository{db: db}
}

func (mr *messageRepository) Save(ctx context.Context, message *entities.Message) error {
	query := `INSERT INTO messages (id, conversation_id, sender_id, receiver_id, content, correlation_id, created_at, read)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := mr.db.ExecContext(ctx, query,
		message.ID, message.ConversationID, message.SenderID, message.ReceiverID,
		message.Content, message.CorrelationID, message.CreatedAt, message.Read)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}

	return nil
}

func (mr *messageRepository) History(ctx context.Context, conversationID string) ([]entities.Message, error) {
	query := `SELECT id, conversation_id, sender_id, receiver_id, content, correlation_id, created_at, read
			  FROM messages
			  WHERE conversation_id = $1
			  ORDER BY created_at DESC`

	var messages []entities.Message
	if err := mr.db.SelectContext(ctx, &messages, query, conversationID); err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}

	return messages, nil
}

func (mr *messageRepository) Latest(ctx context.Context, conversationID string) (*entities.Message, error) {
	query := `SELECT id, conversation_id, sender_id, receiver_id, content, correlation_id, created_at, read
			  FROM messages
			  WHERE conversation_id = $1
			  ORDER BY created_at DESC
			  LIMIT 1`

	var message entities.Message
	err := mr.db.GetContext(ctx, &message, query, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest message: %w", err)
	}

	return &message, nil
}
