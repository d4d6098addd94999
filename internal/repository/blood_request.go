package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"bloodconnect/internal/model"
)

type bloodRequestRepository struct {
	db *sqlx.DB
}

func NewBloodRequestRepository(db *sqlx.DB) BloodRequestRepository {
	return &bloodRequestRepository{db: db}
}

// ListRecent returns blood requests, newest first.
func (r *bloodRequestRepository) ListRecent(ctx context.Context) ([]model.BloodRequest, error) {
	query := `
		SELECT id, recipient_id, blood_type, location, units, urgency, status, created_at
		FROM requests
		ORDER BY created_at DESC
	`
	requests := []model.BloodRequest{}
	if err := r.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, fmt.Errorf("list blood requests: %w", err)
	}
	return requests, nil
}
