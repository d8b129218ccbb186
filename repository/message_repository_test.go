package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"sortie/entities"
	"sortie/storage"
)

// testDB connects to the database named by the TEST_DB_* environment
// variables and skips the test when none is reachable.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping database test")
	}

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host,
		envOr("TEST_DB_PORT", "5432"),
		envOr("TEST_DB_USER", "postgres"),
		envOr("TEST_DB_PASSWORD", "postgres"),
		envOr("TEST_DB_NAME", "sortie_test"),
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Skipf("database not reachable, skipping: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if _, err := db.Exec("DELETE FROM messages"); err != nil {
		t.Fatalf("failed to clean messages table: %v", err)
	}

	return db
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func newMessage(conversationID, sender, receiver, content string, at time.Time) *entities.Message {
	return &entities.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       sender,
		ReceiverID:     receiver,
		Content:        content,
		CorrelationID:  uuid.NewString(),
		CreatedAt:      at,
	}
}

func TestMessageRepositorySaveAndHistory(t *testing.T) {
	db := testDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Microsecond)
	first := newMessage("f1_u1", "u1", "f1", "token-1", base)
	second := newMessage("f1_u1", "f1", "u1", "token-2", base.Add(time.Second))
	other := newMessage("f2_u1", "u1", "f2", "token-3", base)

	for _, m := range []*entities.Message{first, second, other} {
		if err := repo.Save(ctx, m); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	history, err := repo.History(ctx, "f1_u1")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}

	if len(history) != 2 {
		t.Fatalf("history has %d messages, want 2", len(history))
	}
	if history[0].ID != second.ID || history[1].ID != first.ID {
		t.Errorf("history order = [%s, %s], want newest first [%s, %s]",
			history[0].ID, history[1].ID, second.ID, first.ID)
	}
	if history[0].Content != "token-2" {
		t.Errorf("Content = %q, want %q", history[0].Content, "token-2")
	}
	if history[0].CorrelationID != second.CorrelationID {
		t.Errorf("CorrelationID = %q, want %q", history[0].CorrelationID, second.CorrelationID)
	}
}

func TestMessageRepositoryLatest(t *testing.T) {
	db := testDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	latest, err := repo.Latest(ctx, "empty_conversation")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest != nil {
		t.Fatalf("Latest = %+v for empty conversation, want nil", latest)
	}

	base := time.Now().UTC().Truncate(time.Microsecond)
	first := newMessage("f1_u1", "u1", "f1", "token-1", base)
	second := newMessage("f1_u1", "f1", "u1", "token-2", base.Add(time.Second))
	for _, m := range []*entities.Message{first, second} {
		if err := repo.Save(ctx, m); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	latest, err = repo.Latest(ctx, "f1_u1")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest == nil || latest.ID != second.ID {
		t.Fatalf("Latest = %+v, want message %s", latest, second.ID)
	}
}

func TestUserRepositoryMissingUser(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	_, err := repo.ByID(context.Background(), "nobody")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("ByID for missing user: got %v, want sql.ErrNoRows", err)
	}
}
