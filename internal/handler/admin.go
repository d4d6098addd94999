package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"bloodconnect/internal/httputil"
	"bloodconnect/internal/model"
)

// Reporter serves the admin dashboard reads.
type Reporter interface {
	ListRequests(ctx context.Context) ([]model.BloodRequest, error)
	ListDonorHistory(ctx context.Context) ([]model.DonorActivity, error)
	ListNotifications(ctx context.Context) ([]model.Notification, error)
	ExportDonorHistory(ctx context.Context) (*model.ExportResult, error)
}

type AdminHandler struct {
	reporter Reporter
}

func NewAdminHandler(reporter Reporter) *AdminHandler {
	return &AdminHandler{reporter: reporter}
}

// ListRequests handles GET /admin/requests
func (h *AdminHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.reporter.ListRequests(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("list requests")
		httputil.WriteUpstreamError(w, "Failed to list requests")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, requests)
}

// ListDonorHistory handles GET /admin/donorHistory
func (h *AdminHandler) ListDonorHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.reporter.ListDonorHistory(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("list donor history")
		httputil.WriteUpstreamError(w, "Failed to list donor history")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, history)
}

// ListNotifications handles GET /admin/notifications
func (h *AdminHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.reporter.ListNotifications(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("list notifications")
		httputil.WriteUpstreamError(w, "Failed to list notifications")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, notifications)
}

// ExportDonorHistory handles POST /admin/donorHistory/export
// Uploads a JSON snapshot of the donor history to object storage.
func (h *AdminHandler) ExportDonorHistory(w http.ResponseWriter, r *http.Request) {
	result, err := h.reporter.ExportDonorHistory(r.Context())
	if err != nil {
		if errors.Is(err, model.ErrExportNotConfigured) {
			httputil.WriteNotImplemented(w, "Export is not configured")
			return
		}
		hlog.FromRequest(r).Error().Err(err).Msg("export donor history")
		httputil.WriteUpstreamError(w, "Failed to export donor history")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
