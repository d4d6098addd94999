package model

import "errors"

// RoleAdmin is the role value that puts a user in the admin broadcast set.
const RoleAdmin = "Admin"

// User is the read-only view of an identity document. Only the role is
// relevant to notification routing.
type User struct {
	ID   string `db:"id" json:"id" firestore:"-"`
	Role string `db:"role" json:"role" firestore:"role"`
}

var (
	// ErrUserNotFound is returned when a token is registered for a user
	// the store does not know
	ErrUserNotFound = errors.New("user not found")
)
