package model

import (
	"errors"
	"time"
)

// DeviceToken is one installed app instance registered for push.
// A token belongs to exactly one user; registering it again moves it.
type DeviceToken struct {
	UserID    string    `db:"user_id" json:"userId"`
	Token     string    `db:"token" json:"token"`
	Platform  string    `db:"platform" json:"platform"` // "ios", "android", "expo"
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// RegisterTokenRequest is the request body for registering a device token.
type RegisterTokenRequest struct {
	UserID   string `json:"userId"`
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// RemoveTokenRequest is the request body for removing a device token.
type RemoveTokenRequest struct {
	Token string `json:"token"`
}

// Platform constants
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
	PlatformExpo    = "expo"
)

var (
	ErrTokenRequired       = errors.New("token is required")
	ErrTokenUserIDRequired = errors.New("userId is required")
	ErrUnknownPlatform     = errors.New("platform must be ios, android or expo")
)
