package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"bloodconnect/internal/httputil"
	"bloodconnect/internal/model"
)

// DeviceRegistry stores the push tokens that dispatches resolve against.
type DeviceRegistry interface {
	RegisterDeviceToken(ctx context.Context, req *model.RegisterTokenRequest) error
	RemoveDeviceToken(ctx context.Context, token string) error
}

type DeviceHandler struct {
	devices DeviceRegistry
}

func NewDeviceHandler(devices DeviceRegistry) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

// RegisterToken handles POST /devices/token
// Registers or updates a push token for the user.
func (h *DeviceHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.devices.RegisterDeviceToken(r.Context(), &req); err != nil {
		if errors.Is(err, model.ErrTokenRequired) ||
			errors.Is(err, model.ErrTokenUserIDRequired) ||
			errors.Is(err, model.ErrUnknownPlatform) {
			httputil.WriteBadRequest(w, err.Error())
			return
		}
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteBadRequest(w, model.ErrUserNotFound.Error())
			return
		}
		hlog.FromRequest(r).Error().Err(err).Str("user_id", req.UserID).Msg("register device token")
		httputil.WriteUpstreamError(w, "Failed to register device token")
		return
	}

	httputil.WriteMessage(w, "Device token registered")
}

// RemoveToken handles DELETE /devices/token
// Removes a push token (e.g., on logout).
func (h *DeviceHandler) RemoveToken(w http.ResponseWriter, r *http.Request) {
	var req model.RemoveTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.devices.RemoveDeviceToken(r.Context(), req.Token); err != nil {
		if errors.Is(err, model.ErrTokenRequired) {
			httputil.WriteBadRequest(w, err.Error())
			return
		}
		hlog.FromRequest(r).Error().Err(err).Msg("remove device token")
		httputil.WriteUpstreamError(w, "Failed to remove device token")
		return
	}

	httputil.WriteMessage(w, "Device token removed")
}
