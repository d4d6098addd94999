package model

import "time"

// BloodRequest is a recipient's request for blood. The core only lists
// them for admin reporting; the mobile app owns their lifecycle.
type BloodRequest struct {
	ID          string    `db:"id" json:"id" firestore:"-"`
	RecipientID string    `db:"recipient_id" json:"recipientId" firestore:"recipientId"`
	BloodType   string    `db:"blood_type" json:"bloodType" firestore:"bloodType"`
	Location    string    `db:"location" json:"location" firestore:"location"`
	Units       int       `db:"units" json:"units" firestore:"units"`
	Urgency     string    `db:"urgency" json:"urgency" firestore:"urgency"`
	Status      string    `db:"status" json:"status" firestore:"status"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt" firestore:"createdAt"`
}
