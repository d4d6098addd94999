package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"bloodconnect/internal/model"
)

// DeviceTokenStore keeps tokens as users/{uid}/tokens/{token}. The token
// value is the document ID; the app may write documents with no fields.
type DeviceTokenStore struct {
	client *firestore.Client
}

func (s *DeviceTokenStore) tokens(userID string) *firestore.CollectionRef {
	return s.client.Collection(CollectionUsers).Doc(userID).Collection(CollectionTokens)
}

// GetByUserID lists users/{uid}/tokens. A missing user has no documents.
func (s *DeviceTokenStore) GetByUserID(ctx context.Context, userID string) ([]model.DeviceToken, error) {
	tokens := []model.DeviceToken{}
	err := forEach(ctx, s.tokens(userID).Query, func(doc *firestore.DocumentSnapshot) error {
		tokens = append(tokens, toDeviceToken(doc))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get device tokens: %w", err)
	}
	return tokens, nil
}

// GetByTokens scans the tokens collection group once and keeps the
// documents whose ID is one of the candidates. Document-ID filters on a
// collection group need full paths, which the caller does not have, so the
// cost grows with every registered token. Only the fields toDeviceToken
// reads are fetched.
func (s *DeviceTokenStore) GetByTokens(ctx context.Context, candidates []string) ([]model.DeviceToken, error) {
	if len(candidates) == 0 {
		return []model.DeviceToken{}, nil
	}

	wanted := make(map[string]struct{}, len(candidates))
	for _, t := range candidates {
		wanted[t] = struct{}{}
	}

	found := []model.DeviceToken{}
	q := s.client.CollectionGroup(CollectionTokens).Select("platform", "updatedAt")
	err := forEach(ctx, q, func(doc *firestore.DocumentSnapshot) error {
		if _, ok := wanted[doc.Ref.ID]; ok && ownerID(doc.Ref) != "" {
			found = append(found, toDeviceToken(doc))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get device tokens by value: %w", err)
	}
	return found, nil
}

// Upsert writes users/{uid}/tokens/{token} and removes the same token from
// any other user inside one transaction.
func (s *DeviceTokenStore) Upsert(ctx context.Context, userID, token, platform string) error {
	target := s.tokens(userID).Doc(token)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		stale, err := s.refsForToken(tx.Documents(s.client.CollectionGroup(CollectionTokens)), token)
		if err != nil {
			return err
		}

		for _, ref := range stale {
			if ownerID(ref) == userID {
				continue
			}
			if err := tx.Delete(ref); err != nil {
				return err
			}
		}

		return tx.Set(target, map[string]interface{}{
			"platform":  platform,
			"updatedAt": firestore.ServerTimestamp,
		}, firestore.MergeAll)
	})
	if err != nil {
		return fmt.Errorf("upsert device token: %w", err)
	}
	return nil
}

// Delete removes every registration of token.
func (s *DeviceTokenStore) Delete(ctx context.Context, token string) error {
	refs, err := s.refsForToken(s.client.CollectionGroup(CollectionTokens).Documents(ctx), token)
	if err != nil {
		return fmt.Errorf("delete device token: %w", err)
	}

	for _, ref := range refs {
		if _, err := ref.Delete(ctx); err != nil {
			return fmt.Errorf("delete device token: %w", err)
		}
	}
	return nil
}

func (s *DeviceTokenStore) refsForToken(iter *firestore.DocumentIterator, token string) ([]*firestore.DocumentRef, error) {
	docs, err := iter.GetAll()
	if err != nil {
		return nil, err
	}

	var refs []*firestore.DocumentRef
	for _, doc := range docs {
		if doc.Ref.ID == token {
			refs = append(refs, doc.Ref)
		}
	}
	return refs, nil
}

// ownerID returns uid for users/{uid}/tokens/{token}.
func ownerID(ref *firestore.DocumentRef) string {
	if ref.Parent == nil || ref.Parent.Parent == nil {
		return ""
	}
	return ref.Parent.Parent.ID
}

func toDeviceToken(doc *firestore.DocumentSnapshot) model.DeviceToken {
	dt := model.DeviceToken{
		UserID:    ownerID(doc.Ref),
		Token:     doc.Ref.ID,
		CreatedAt: doc.CreateTime,
		UpdatedAt: doc.UpdateTime,
	}
	if p, ok := doc.Data()["platform"].(string); ok {
		dt.Platform = p
	}
	if ts, ok := doc.Data()["updatedAt"].(time.Time); ok {
		dt.UpdatedAt = ts
	}
	return dt
}
