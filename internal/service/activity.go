package service

import (
	"context"
	"fmt"

	"bloodconnect/internal/model"
)

// ActivitySink persists donor activity. The activity repository writes
// directly; the stream publisher hands entries to the audit worker.
type ActivitySink interface {
	Create(ctx context.Context, activity *model.DonorActivity) error
}

// ActivityRecorder appends donor audit entries. It has no read path and
// never consults the dispatch ledger.
type ActivityRecorder struct {
	sink ActivitySink
}

func NewActivityRecorder(sink ActivitySink) *ActivityRecorder {
	return &ActivityRecorder{sink: sink}
}

// Record appends one entry. The timestamp is assigned server-side.
func (r *ActivityRecorder) Record(ctx context.Context, donorID, action string, bloodType, location *string) error {
	if donorID == "" {
		return model.ErrDonorIDRequired
	}

	activity := &model.DonorActivity{
		DonorID:   donorID,
		Action:    action,
		BloodType: bloodType,
		Location:  location,
	}
	if err := r.sink.Create(ctx, activity); err != nil {
		return fmt.Errorf("record donor activity: %w", err)
	}
	return nil
}

// MarkAvailable records a donor availability ping. Availability is not a
// notification event: no ledger, no push.
func (r *ActivityRecorder) MarkAvailable(ctx context.Context, req *model.DonorAvailableRequest) error {
	return r.Record(ctx, req.DonorID, model.ActionMarkedAvailable, req.BloodType, req.Location)
}
