package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"bloodconnect/internal/model"
)

type ledgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

// Exists checks for a ledger row without locking it.
func (r *ledgerRepository) Exists(ctx context.Context, key string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM notifications_log WHERE key = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, key); err != nil {
		return false, fmt.Errorf("check ledger entry: %w", err)
	}
	return exists, nil
}

// Create inserts the ledger row only when the key is free. The primary key
// on notifications_log.key makes concurrent claimants race on the insert
// itself, so exactly one of them affects a row.
func (r *ledgerRepository) Create(ctx context.Context, entry model.LedgerEntry) error {
	query := `
		INSERT INTO notifications_log (key, sent_at, count, type)
		VALUES ($1, NOW(), $2, $3)
		ON CONFLICT (key) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, entry.Key, entry.Count, entry.Type)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	if affected == 0 {
		return model.ErrAlreadyClaimed
	}
	return nil
}
