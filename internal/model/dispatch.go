package model

import (
	"errors"
	"time"
)

// DispatchKind identifies which notification protocol produced a dispatch.
// The value doubles as the dedup key suffix.
type DispatchKind string

const (
	KindDonorToRecipient DispatchKind = "donor_to_recipient"
	KindRecipientToAdmin DispatchKind = "recipient_to_admin"
)

// DedupKey returns the ledger key for a logical event.
func DedupKey(requestID string, kind DispatchKind) string {
	return requestID + "_" + string(kind)
}

// Admin broadcast content
const (
	AdminBroadcastTitle = "New Blood Request"
)

// AdminBroadcastBody renders the body of a recipient-to-admin broadcast.
func AdminBroadcastBody(bloodType, location string) string {
	return "Blood Type: " + bloodType + " — Location: " + location
}

// LedgerEntry records that the dispatch for Key has been sent.
// Entries are created once and never modified.
type LedgerEntry struct {
	Key    string    `db:"key" json:"key" firestore:"-"`
	SentAt time.Time `db:"sent_at" json:"sentAt" firestore:"sentAt"`
	Count  int       `db:"count" json:"count" firestore:"count"`
	Type   string    `db:"type" json:"type" firestore:"type"`
}

// SendNotificationRequest is the request body for POST /sendNotification.
type SendNotificationRequest struct {
	RequestID string   `json:"requestId"`
	DonorID   string   `json:"donorId,omitempty"`
	Tokens    []string `json:"tokens"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	BloodType *string  `json:"bloodType,omitempty"`
	Location  *string  `json:"location,omitempty"`
	Type      string   `json:"type,omitempty"`
}

// NotifyAdminsRequest is the request body for POST /notifyAdmins.
type NotifyAdminsRequest struct {
	RequestID string `json:"requestId"`
	BloodType string `json:"bloodType"`
	Location  string `json:"location"`
}

// DispatchStatus is the outcome of one dispatch attempt.
type DispatchStatus string

const (
	DispatchSent         DispatchStatus = "sent"
	DispatchAlreadySent  DispatchStatus = "already_sent"
	DispatchNoRecipients DispatchStatus = "no_recipients"
)

// DispatchResult is what the Dispatcher hands back to the transport layer.
// Response is set only when a multicast was issued.
type DispatchResult struct {
	Key      string
	Status   DispatchStatus
	Response *MulticastResult
}

// Response messages for the non-send outcomes
const (
	MessageAlreadySent   = "Notification already sent"
	MessageNoAdminTokens = "No admin tokens found"
)

var (
	ErrTokensRequired     = errors.New("tokens array required")
	ErrRequestIDRequired  = errors.New("requestId is required")
	ErrMissingAdminFields = errors.New("requestId, bloodType, and location are required")

	// ErrAlreadyClaimed is returned by a ledger store when the key exists.
	ErrAlreadyClaimed = errors.New("dispatch already claimed")

	// ErrDispatchInProgress means another attempt holds the in-flight
	// guard for the same key.
	ErrDispatchInProgress = errors.New("dispatch already in progress")
)
