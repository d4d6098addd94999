package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"bloodconnect/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// ListByRole returns the users holding role, ordered by id for stable fan-out.
func (r *userRepository) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	query := `
		SELECT id, role
		FROM users
		WHERE role = $1
		ORDER BY id
	`
	users := []model.User{}
	if err := r.db.SelectContext(ctx, &users, query, role); err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return users, nil
}
