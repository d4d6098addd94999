package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"bloodconnect/internal/model"
	"bloodconnect/internal/repository"
)

// ObjectStore uploads a blob and returns its public URL.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body []byte, contentType, cacheControl string) (url string, err error)
}

// ReportingService serves the admin read-only views. Every list is newest
// first.
type ReportingService struct {
	requestRepo  repository.BloodRequestRepository
	activityRepo repository.DonorActivityRepository
	notifRepo    repository.NotificationRepository
	objects      ObjectStore // nil when object storage is not configured
}

func NewReportingService(
	requestRepo repository.BloodRequestRepository,
	activityRepo repository.DonorActivityRepository,
	notifRepo repository.NotificationRepository,
	objects ObjectStore,
) *ReportingService {
	return &ReportingService{
		requestRepo:  requestRepo,
		activityRepo: activityRepo,
		notifRepo:    notifRepo,
		objects:      objects,
	}
}

func (s *ReportingService) ListRequests(ctx context.Context) ([]model.BloodRequest, error) {
	return s.requestRepo.ListRecent(ctx)
}

func (s *ReportingService) ListDonorHistory(ctx context.Context) ([]model.DonorActivity, error) {
	return s.activityRepo.ListRecent(ctx)
}

func (s *ReportingService) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	return s.notifRepo.ListRecent(ctx)
}

// ExportDonorHistory uploads the full donor history as one JSON document.
func (s *ReportingService) ExportDonorHistory(ctx context.Context) (*model.ExportResult, error) {
	if s.objects == nil {
		return nil, model.ErrExportNotConfigured
	}

	history, err := s.activityRepo.ListRecent(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("encode donor history: %w", err)
	}

	key := fmt.Sprintf("%s/%s%s", model.ExportFolder, uuid.NewString(), model.ExportExt)
	url, err := s.objects.PutObject(ctx, key, payload, model.ContentTypeJSON, model.ExportCacheControl)
	if err != nil {
		return nil, err
	}

	return &model.ExportResult{URL: url, Key: key, Count: len(history)}, nil
}
