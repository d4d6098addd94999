package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"bloodconnect/internal/model"
)

type BloodRequestStore struct {
	client *firestore.Client
}

func (s *BloodRequestStore) ListRecent(ctx context.Context) ([]model.BloodRequest, error) {
	q := s.client.Collection(CollectionRequests).OrderBy("createdAt", firestore.Desc)

	requests := []model.BloodRequest{}
	err := forEach(ctx, q, func(doc *firestore.DocumentSnapshot) error {
		var r model.BloodRequest
		if err := doc.DataTo(&r); err != nil {
			return fmt.Errorf("decode request %s: %w", doc.Ref.ID, err)
		}
		r.ID = doc.Ref.ID
		requests = append(requests, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list blood requests: %w", err)
	}
	return requests, nil
}
