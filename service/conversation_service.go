package service

import (
	"context"
	"fmt"
	"log"

	"sortie/encryption"
	"sortie/entities"
	"sortie/repository"
)

// Preview placeholders shown in conversation lists.
const (
	PlaceholderStartConversation = "Démarrer une conversation!"
	PlaceholderUnreadable        = "Message illisible"
)

// ConversationID maps an unordered pair of user ids to a canonical
// conversation id: the two ids sorted lexicographically, joined by "_".
// ConversationID(a, b) == ConversationID(b, a) always holds.
func ConversationID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}

type ConversationService interface {
	List(ctx context.Context, userID string) ([]entities.Conversation, error)
}

type conversationService struct {
	friends  repository.FriendRepository
	users    repository.UserRepository
	messages repository.MessageRepository
	cipher   *encryption.Cipher
}

func NewConversationService(
	friends repository.FriendRepository,
	users repository.UserRepository,
	messages repository.MessageRepository,
	cipher *encryption.Cipher,
) *conversationService {
	return &conversationService{friends: friends, users: users, messages: messages, cipher: cipher}
}

// List assembles the conversation view for a user: one entry per friend,
// previewing the latest message when one exists. Conversations are
// derived on every call, never persisted.
func (cs *conversationService) List(ctx context.Context, userID string) ([]entities.Conversation, error) {
	friendships, err := cs.friends.ByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", err)
	}

	conversations := make([]entities.Conversation, 0, len(friendships))
	for _, friendship := range friendships {
		friend, err := cs.users.ByID(ctx, friendship.FriendID)
		if err != nil {
			log.Printf("Skipping conversation with %s: %v", friendship.FriendID, err)
			continue
		}

		conversation := entities.Conversation{
			ID:          ConversationID(userID, friendship.FriendID),
			Friend:      *friend,
			LastMessage: PlaceholderStartConversation,
			UpdatedAt:   friendship.CreatedAt,
		}

		latest, err := cs.messages.Latest(ctx, conversation.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load latest message for %s: %w", conversation.ID, err)
		}

		if latest != nil {
			// A preview that cannot be decrypted must not break the
			// whole list.
			preview, err := cs.cipher.Decrypt(latest.Content)
			if err != nil {
				preview = PlaceholderUnreadable
			}
			conversation.LastMessage = preview
			conversation.UpdatedAt = latest.CreatedAt
		}

		conversations = append(conversations, conversation)
	}

	return conversations, nil
}
