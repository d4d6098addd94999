package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bloodconnect/internal/model"
)

type donorActivityRepository struct {
	db *sqlx.DB
}

func NewDonorActivityRepository(db *sqlx.DB) DonorActivityRepository {
	return &donorActivityRepository{db: db}
}

// Create appends an activity row. A zero Timestamp means "now" on the
// database clock; queued entries keep the time they were accepted.
// Writing an ID that already exists is a no-op so redelivered stream
// entries are stored once.
func (r *donorActivityRepository) Create(ctx context.Context, a *model.DonorActivity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	query := `
		INSERT INTO donor_history (id, donor_id, action, blood_type, location, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6::timestamptz, NOW()))
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at
	`
	var ts any
	if !a.Timestamp.IsZero() {
		ts = a.Timestamp
	}

	err := r.db.QueryRowxContext(ctx, query, a.ID, a.DonorID, a.Action, a.BloodType, a.Location, ts).
		Scan(&a.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("insert donor activity: %w", err)
	}
	return nil
}

// ListRecent returns the donor history, newest first.
func (r *donorActivityRepository) ListRecent(ctx context.Context) ([]model.DonorActivity, error) {
	query := `
		SELECT id, donor_id, action, blood_type, location, created_at
		FROM donor_history
		ORDER BY created_at DESC
	`
	history := []model.DonorActivity{}
	if err := r.db.SelectContext(ctx, &history, query); err != nil {
		return nil, fmt.Errorf("list donor history: %w", err)
	}
	return history, nil
}
