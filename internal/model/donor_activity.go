package model

import (
	"errors"
	"time"
)

// Donor activity actions
const (
	ActionRespondedToRequest = "Responded to Request"
	ActionMarkedAvailable    = "Marked Available"
)

// DonorActivity is one append-only donor audit entry.
type DonorActivity struct {
	ID        string    `db:"id" json:"id" firestore:"-"`
	DonorID   string    `db:"donor_id" json:"donorId" firestore:"donorId"`
	Action    string    `db:"action" json:"action" firestore:"action"`
	BloodType *string   `db:"blood_type" json:"bloodType,omitempty" firestore:"bloodType"`
	Location  *string   `db:"location" json:"location,omitempty" firestore:"location"`
	Timestamp time.Time `db:"created_at" json:"timestamp" firestore:"timestamp"`
}

// DonorAvailableRequest is the request body for POST /donorAvailable.
type DonorAvailableRequest struct {
	DonorID   string  `json:"donorId"`
	BloodType *string `json:"bloodType,omitempty"`
	Location  *string `json:"location,omitempty"`
}

var (
	ErrDonorIDRequired = errors.New("donorId is required")
)
