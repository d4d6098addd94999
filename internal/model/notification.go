package model

import (
	"time"
)

// Notification types
const (
	NotificationTypeRequestUpdate = "request_update"
	NotificationTypeSystem        = "system"
)

// Notification is a per-user in-app notification. Records are only ever
// appended; the core never updates or deletes them.
type Notification struct {
	ID        string    `db:"id" json:"id" firestore:"-"`
	UserID    string    `db:"user_id" json:"userId" firestore:"userId"`
	Title     string    `db:"title" json:"title" firestore:"title"`
	Body      string    `db:"body" json:"body" firestore:"body"`
	Type      string    `db:"type" json:"type" firestore:"type"`
	Timestamp time.Time `db:"created_at" json:"timestamp" firestore:"timestamp"`
}
