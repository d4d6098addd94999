package service

import (
	"context"
	"errors"
	"fmt"

	"bloodconnect/internal/model"
	"bloodconnect/internal/repository"
)

// Ledger is the dedup authority: an entry's existence means the dispatch
// for its key has been sent.
type Ledger struct {
	repo repository.LedgerRepository
}

func NewLedger(repo repository.LedgerRepository) *Ledger {
	return &Ledger{repo: repo}
}

// IsAlreadySent reports whether key has been claimed.
func (l *Ledger) IsAlreadySent(ctx context.Context, key string) (bool, error) {
	sent, err := l.repo.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("ledger lookup %s: %w", key, err)
	}
	return sent, nil
}

// Claim records key as sent. It fails with model.ErrAlreadyClaimed if any
// other attempt created the entry first; the existing entry is untouched.
func (l *Ledger) Claim(ctx context.Context, key string, recipientCount int, notifType string) error {
	err := l.repo.Create(ctx, model.LedgerEntry{
		Key:   key,
		Count: recipientCount,
		Type:  notifType,
	})
	if err != nil {
		if errors.Is(err, model.ErrAlreadyClaimed) {
			return err
		}
		return fmt.Errorf("ledger claim %s: %w", key, err)
	}
	return nil
}
