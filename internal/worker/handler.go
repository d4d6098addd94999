package worker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"bloodconnect/internal/queue"
	"bloodconnect/internal/repository"
)

// Handler persists activity events taken off the stream.
type Handler struct {
	activityRepo repository.DonorActivityRepository
	log          zerolog.Logger
}

// NewHandler creates a new event handler.
func NewHandler(activityRepo repository.DonorActivityRepository, logger zerolog.Logger) *Handler {
	return &Handler{activityRepo: activityRepo, log: logger}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.ActivityEvent) error {
	switch event.Type {
	case queue.EventDonorActivity:
		return h.handleDonorActivity(ctx, event)
	default:
		h.log.Warn().Str("type", event.Type).Msg("unknown event type")
		return nil
	}
}

func (h *Handler) handleDonorActivity(ctx context.Context, event queue.ActivityEvent) error {
	if event.DonorID == "" {
		return fmt.Errorf("activity event %s: empty donor id", event.ID)
	}

	if err := h.activityRepo.Create(ctx, event.Activity()); err != nil {
		return fmt.Errorf("write activity %s: %w", event.ID, err)
	}
	return nil
}
