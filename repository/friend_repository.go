package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"sortie/entities"
)

type FriendRepository interface {
	// ByUserID returns every friendship edge of a user.
	ByUserID(ctx context.Context, userID string) ([]entities.Friendship, error)
}

type friendRepository struct {
	db *sqlx.DB
}

func NewFriendRepository(db *sqlx.DB) *friendRepository {
	return &friendRepository{db: db}
}

func (fr *friendRepository) ByUserID(ctx context.Context, userID string) ([]entities.Friendship, error) {
	query := `SELECT user_id, friend_id, created_at
			  FROM friendships
			  WHERE user_id = $1`

	var friendships []entities.Friendship
	if err := fr.db.SelectContext(ctx, &friendships, query, userID); err != nil {
		return nil, fmt.Errorf("failed to query friendships: %w", err)
	}

	return friendships, nil
}
