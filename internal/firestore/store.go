// Package firestore implements the repository interfaces on Cloud
// Firestore, using the collection layout the mobile app writes:
//
//	users/{uid}                 role
//	users/{uid}/tokens/{token}  one document per registered device
//	notificationsLog/{key}      dedup ledger
//	notifications/{auto}        in-app notification records
//	donorHistory/{auto}         donor activity audit
//	requests/{auto}             blood requests (read-only here)
package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"bloodconnect/internal/repository"
)

// Collection names
const (
	CollectionUsers         = "users"
	CollectionTokens        = "tokens"
	CollectionLedger        = "notificationsLog"
	CollectionNotifications = "notifications"
	CollectionDonorHistory  = "donorHistory"
	CollectionRequests      = "requests"
)

// Store bundles the Firestore client shared by every repository.
type Store struct {
	client *firestore.Client
}

func NewStore(client *firestore.Client) *Store {
	return &Store{client: client}
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Users() *UserStore                  { return &UserStore{client: s.client} }
func (s *Store) DeviceTokens() *DeviceTokenStore    { return &DeviceTokenStore{client: s.client} }
func (s *Store) Ledger() *LedgerStore               { return &LedgerStore{client: s.client} }
func (s *Store) Notifications() *NotificationStore  { return &NotificationStore{client: s.client} }
func (s *Store) DonorActivity() *DonorActivityStore { return &DonorActivityStore{client: s.client} }
func (s *Store) BloodRequests() *BloodRequestStore  { return &BloodRequestStore{client: s.client} }

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

// forEach streams a query's documents to fn.
func forEach(ctx context.Context, q firestore.Query, fn func(*firestore.DocumentSnapshot) error) error {
	iter := q.Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				return nil
			}
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
}

var (
	_ repository.UserRepository          = (*UserStore)(nil)
	_ repository.DeviceTokenRepository   = (*DeviceTokenStore)(nil)
	_ repository.LedgerRepository        = (*LedgerStore)(nil)
	_ repository.NotificationRepository  = (*NotificationStore)(nil)
	_ repository.DonorActivityRepository = (*DonorActivityStore)(nil)
	_ repository.BloodRequestRepository  = (*BloodRequestStore)(nil)
)
