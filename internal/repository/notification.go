package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bloodconnect/internal/model"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// CreateBatch inserts all notifications in a single transaction.
// IDs are assigned here; timestamps come from the database clock.
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin notification batch: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO notifications (id, user_id, title, body, type, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	for i := range notifications {
		n := &notifications[i]
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, query, n.ID, n.UserID, n.Title, n.Body, n.Type); err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit notification batch: %w", err)
	}
	return nil
}

// ListRecent returns all notifications, newest first.
func (r *notificationRepository) ListRecent(ctx context.Context) ([]model.Notification, error) {
	query := `
		SELECT id, user_id, title, body, type, created_at
		FROM notifications
		ORDER BY created_at DESC
	`
	notifications := []model.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}
