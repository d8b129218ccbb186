package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"sortie/entities"
)

type UserRepository interface {
	ByID(ctx context.Context, id string) (*entities.User, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (ur *userRepository) ByID(ctx context.Context, id string) (*entities.User, error) {
	query := `SELECT id, firstname, lastname, avatar FROM users WHERE id = $1`

	var user entities.User
	err := ur.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &user, nil
}
