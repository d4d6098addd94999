package repository

import (
	"context"

	"bloodconnect/internal/model"
)

// The interfaces below are implemented twice: by the sqlx repositories in
// this package and by the Firestore stores in internal/firestore.

type UserRepository interface {
	// ListByRole returns every user whose role matches exactly
	ListByRole(ctx context.Context, role string) ([]model.User, error)
}

type DeviceTokenRepository interface {
	// Upsert creates or moves a device token to userID
	Upsert(ctx context.Context, userID, token, platform string) error
	// GetByUserID returns all device tokens for a user (empty for unknown users)
	GetByUserID(ctx context.Context, userID string) ([]model.DeviceToken, error)
	// GetByTokens returns the registrations matching any of the given tokens
	GetByTokens(ctx context.Context, tokens []string) ([]model.DeviceToken, error)
	// Delete removes a device token
	Delete(ctx context.Context, token string) error
}

type LedgerRepository interface {
	// Exists reports whether an entry for key has been created
	Exists(ctx context.Context, key string) (bool, error)
	// Create inserts the entry only if its key is absent.
	// Returns model.ErrAlreadyClaimed when the key already exists.
	Create(ctx context.Context, entry model.LedgerEntry) error
}

type NotificationRepository interface {
	// CreateBatch appends one notification per element
	CreateBatch(ctx context.Context, notifications []model.Notification) error
	// ListRecent returns notifications newest first
	ListRecent(ctx context.Context) ([]model.Notification, error)
}

type DonorActivityRepository interface {
	// Create appends an activity entry
	Create(ctx context.Context, activity *model.DonorActivity) error
	// ListRecent returns activity newest first
	ListRecent(ctx context.Context) ([]model.DonorActivity, error)
}

type BloodRequestRepository interface {
	// ListRecent returns blood requests newest first
	ListRecent(ctx context.Context) ([]model.BloodRequest, error)
}
