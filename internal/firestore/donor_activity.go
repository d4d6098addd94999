package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"bloodconnect/internal/model"
)

type DonorActivityStore struct {
	client *firestore.Client
}

// Create adds a donorHistory document. A zero Timestamp is replaced by
// the server timestamp. A preassigned ID is written with Set, so storing
// the same queued entry twice leaves one document.
func (s *DonorActivityStore) Create(ctx context.Context, a *model.DonorActivity) error {
	var ts interface{} = firestore.ServerTimestamp
	if !a.Timestamp.IsZero() {
		ts = a.Timestamp
	}
	data := map[string]interface{}{
		"donorId":   a.DonorID,
		"action":    a.Action,
		"bloodType": a.BloodType,
		"location":  a.Location,
		"timestamp": ts,
	}

	col := s.client.Collection(CollectionDonorHistory)
	var (
		wr  *firestore.WriteResult
		err error
	)
	if a.ID != "" {
		wr, err = col.Doc(a.ID).Set(ctx, data)
	} else {
		var ref *firestore.DocumentRef
		ref, wr, err = col.Add(ctx, data)
		if err == nil {
			a.ID = ref.ID
		}
	}
	if err != nil {
		return fmt.Errorf("add donor activity: %w", err)
	}

	if a.Timestamp.IsZero() {
		a.Timestamp = wr.UpdateTime
	}
	return nil
}

// ListRecent orders by timestamp descending.
func (s *DonorActivityStore) ListRecent(ctx context.Context) ([]model.DonorActivity, error) {
	q := s.client.Collection(CollectionDonorHistory).OrderBy("timestamp", firestore.Desc)

	history := []model.DonorActivity{}
	err := forEach(ctx, q, func(doc *firestore.DocumentSnapshot) error {
		var a model.DonorActivity
		if err := doc.DataTo(&a); err != nil {
			return fmt.Errorf("decode donor activity %s: %w", doc.Ref.ID, err)
		}
		a.ID = doc.Ref.ID
		history = append(history, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list donor history: %w", err)
	}
	return history, nil
}
