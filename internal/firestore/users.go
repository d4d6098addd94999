package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"bloodconnect/internal/model"
)

type UserStore struct {
	client *firestore.Client
}

// ListByRole runs users.where(role == role).
func (s *UserStore) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	q := s.client.Collection(CollectionUsers).Where("role", "==", role)

	users := []model.User{}
	err := forEach(ctx, q, func(doc *firestore.DocumentSnapshot) error {
		users = append(users, model.User{ID: doc.Ref.ID, Role: role})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return users, nil
}
