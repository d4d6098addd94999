package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"bloodconnect/internal/model"
)

type LedgerStore struct {
	client *firestore.Client
}

// Exists reports whether notificationsLog/{key} is present.
func (s *LedgerStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.Collection(CollectionLedger).Doc(key).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("check ledger entry: %w", err)
	}
	return true, nil
}

// Create uses DocumentRef.Create, which the server rejects with
// AlreadyExists when the document is present. Of two concurrent claimants
// exactly one succeeds.
func (s *LedgerStore) Create(ctx context.Context, entry model.LedgerEntry) error {
	_, err := s.client.Collection(CollectionLedger).Doc(entry.Key).Create(ctx, map[string]interface{}{
		"sentAt": firestore.ServerTimestamp,
		"count":  entry.Count,
		"type":   entry.Type,
	})
	if err != nil {
		if isAlreadyExists(err) {
			return model.ErrAlreadyClaimed
		}
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}
