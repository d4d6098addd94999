package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"

	"bloodconnect/internal/model"
)

type NotificationStore struct {
	client *firestore.Client
}

// CreateBatch adds one auto-ID document per notification through a
// BulkWriter and reports the first failed write.
func (s *NotificationStore) CreateBatch(ctx context.Context, notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	bw := s.client.BulkWriter(ctx)
	coll := s.client.Collection(CollectionNotifications)

	jobs := make([]*firestore.BulkWriterJob, 0, len(notifications))
	var enqueueErr error
	for i := range notifications {
		ref := coll.NewDoc()
		notifications[i].ID = ref.ID

		job, err := bw.Create(ref, map[string]interface{}{
			"userId":    notifications[i].UserID,
			"title":     notifications[i].Title,
			"body":      notifications[i].Body,
			"type":      notifications[i].Type,
			"timestamp": firestore.ServerTimestamp,
		})
		if err != nil {
			enqueueErr = err
			break
		}
		jobs = append(jobs, job)
	}
	bw.End()

	var errs []error
	if enqueueErr != nil {
		errs = append(errs, enqueueErr)
	}
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("create notifications (%d failed): %w", len(errs), errors.Join(errs...))
	}
	return nil
}

// ListRecent orders by timestamp descending.
func (s *NotificationStore) ListRecent(ctx context.Context) ([]model.Notification, error) {
	q := s.client.Collection(CollectionNotifications).OrderBy("timestamp", firestore.Desc)

	notifications := []model.Notification{}
	err := forEach(ctx, q, func(doc *firestore.DocumentSnapshot) error {
		var n model.Notification
		if err := doc.DataTo(&n); err != nil {
			return fmt.Errorf("decode notification %s: %w", doc.Ref.ID, err)
		}
		n.ID = doc.Ref.ID
		notifications = append(notifications, n)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}
