package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"bloodconnect/internal/model"
)

// Event types for the activity stream
const (
	EventDonorActivity = "donor_activity"
)

// Stream names
const (
	StreamDonorActivity = "stream:donor_activity"
)

// Consumer group name for audit workers
const (
	ConsumerGroupActivity = "activity_workers"
)

// ActivityEvent carries one donor activity entry from the API to the
// audit worker. ID is assigned at publish time so redelivery after a
// crash writes the same record again instead of a second one.
type ActivityEvent struct {
	Type      string  `json:"type"`
	ID        string  `json:"id"`
	Timestamp int64   `json:"timestamp"` // Unix milliseconds when the API accepted it
	DonorID   string  `json:"donor_id"`
	Action    string  `json:"action"`
	BloodType *string `json:"blood_type,omitempty"`
	Location  *string `json:"location,omitempty"`
}

// NewActivityEvent wraps an activity entry for publishing.
func NewActivityEvent(a *model.DonorActivity) ActivityEvent {
	return ActivityEvent{
		Type:      EventDonorActivity,
		ID:        a.ID,
		Timestamp: a.Timestamp.UnixMilli(),
		DonorID:   a.DonorID,
		Action:    a.Action,
		BloodType: a.BloodType,
		Location:  a.Location,
	}
}

// Activity converts the event back to the stored entry.
func (e ActivityEvent) Activity() *model.DonorActivity {
	return &model.DonorActivity{
		ID:        e.ID,
		DonorID:   e.DonorID,
		Action:    e.Action,
		BloodType: e.BloodType,
		Location:  e.Location,
		Timestamp: time.UnixMilli(e.Timestamp).UTC(),
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e ActivityEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseActivityEvent parses an ActivityEvent from Redis stream message values.
func ParseActivityEvent(values map[string]interface{}) (ActivityEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ActivityEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ActivityEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ActivityEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
