package service

import (
	"context"
	"strings"

	"bloodconnect/internal/model"
	"bloodconnect/internal/repository"
)

// NotificationService manages device registrations, the input side of
// token resolution.
type NotificationService struct {
	tokenRepo repository.DeviceTokenRepository
}

func NewNotificationService(tokenRepo repository.DeviceTokenRepository) *NotificationService {
	return &NotificationService{tokenRepo: tokenRepo}
}

// RegisterDeviceToken stores or updates a device's push token.
// This is called when:
// - a user signs in on a new device
// - the push token is refreshed by the mobile app
//
// The token is unique, so if the same token exists for a different user,
// it will be reassigned to the current user (device changed hands).
func (s *NotificationService) RegisterDeviceToken(ctx context.Context, req *model.RegisterTokenRequest) error {
	if req.UserID == "" {
		return model.ErrTokenUserIDRequired
	}
	if req.Token == "" {
		return model.ErrTokenRequired
	}

	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	switch platform {
	case model.PlatformIOS, model.PlatformAndroid, model.PlatformExpo:
	case "":
		platform = model.PlatformExpo
		if !IsExpoToken(req.Token) {
			platform = model.PlatformAndroid
		}
	default:
		return model.ErrUnknownPlatform
	}

	return s.tokenRepo.Upsert(ctx, req.UserID, req.Token, platform)
}

// RemoveDeviceToken removes a device token (e.g., on logout).
func (s *NotificationService) RemoveDeviceToken(ctx context.Context, token string) error {
	if token == "" {
		return model.ErrTokenRequired
	}
	return s.tokenRepo.Delete(ctx, token)
}
