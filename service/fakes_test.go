package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"sortie/entities"
)

type fakeMessageRepo struct {
	mu       sync.Mutex
	saved    []entities.Message
	failSave bool
}

func (f *fakeMessageRepo) Save(ctx context.Context, message *entities.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failSave {
		return errors.New("connection refused")
	}

	f.saved = append(f.saved, *message)
	return nil
}

func (f *fakeMessageRepo) History(ctx context.Context, conversationID string) ([]entities.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Newest first, mirroring the SQL repository contract.
	var history []entities.Message
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].ConversationID == conversationID {
			history = append(history, f.saved[i])
		}
	}
	return history, nil
}

func (f *fakeMessageRepo) Latest(ctx context.Context, conversationID string) (*entities.Message, error) {
	history, err := f.History(ctx, conversationID)
	if err != nil || len(history) == 0 {
		return nil, err
	}
	return &history[0], nil
}

type publishedEvent struct {
	room  string
	event entities.Event
}

type fakePublisher struct {
	mu        sync.Mutex
	published []publishedEvent
}

func (f *fakePublisher) Publish(roomID string, event entities.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, publishedEvent{room: roomID, event: event})
}

func (f *fakePublisher) events() []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishedEvent(nil), f.published...)
}

type fakeFriendRepo struct {
	friendships []entities.Friendship
}

func (f *fakeFriendRepo) ByUserID(ctx context.Context, userID string) ([]entities.Friendship, error) {
	var edges []entities.Friendship
	for _, friendship := range f.friendships {
		if friendship.UserID == userID {
			edges = append(edges, friendship)
		}
	}
	return edges, nil
}

type fakeUserRepo struct {
	users map[string]entities.User
}

func (f *fakeUserRepo) ByID(ctx context.Context, id string) (*entities.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &user, nil
}
