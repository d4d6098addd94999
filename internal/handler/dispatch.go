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

// Dispatcher runs the notification protocols.
type Dispatcher interface {
	DispatchDonorToRecipient(ctx context.Context, req *model.SendNotificationRequest) (*model.DispatchResult, error)
	DispatchRecipientToAdmin(ctx context.Context, req *model.NotifyAdminsRequest) (*model.DispatchResult, error)
}

// AvailabilityRecorder logs donor availability pings.
type AvailabilityRecorder interface {
	MarkAvailable(ctx context.Context, req *model.DonorAvailableRequest) error
}

const messageDonorAvailable = "Donor availability logged successfully"

type DispatchHandler struct {
	dispatcher Dispatcher
	recorder   AvailabilityRecorder
}

func NewDispatchHandler(dispatcher Dispatcher, recorder AvailabilityRecorder) *DispatchHandler {
	return &DispatchHandler{
		dispatcher: dispatcher,
		recorder:   recorder,
	}
}

// SendNotification handles POST /sendNotification
// Pushes a donor's response to the recipient's devices, once per request.
func (h *DispatchHandler) SendNotification(w http.ResponseWriter, r *http.Request) {
	var req model.SendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	result, err := h.dispatcher.DispatchDonorToRecipient(r.Context(), &req)
	if err != nil {
		writeDispatchError(w, r, err)
		return
	}
	writeDispatchResult(w, result)
}

// NotifyAdmins handles POST /notifyAdmins
// Broadcasts a new blood request to every admin device, once per request.
func (h *DispatchHandler) NotifyAdmins(w http.ResponseWriter, r *http.Request) {
	var req model.NotifyAdminsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	result, err := h.dispatcher.DispatchRecipientToAdmin(r.Context(), &req)
	if err != nil {
		writeDispatchError(w, r, err)
		return
	}
	writeDispatchResult(w, result)
}

// DonorAvailable handles POST /donorAvailable
// Appends an availability entry to the donor history. Nothing is pushed.
func (h *DispatchHandler) DonorAvailable(w http.ResponseWriter, r *http.Request) {
	var req model.DonorAvailableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.recorder.MarkAvailable(r.Context(), &req); err != nil {
		if errors.Is(err, model.ErrDonorIDRequired) {
			httputil.WriteBadRequest(w, err.Error())
			return
		}
		hlog.FromRequest(r).Error().Err(err).Str("donor_id", req.DonorID).Msg("log donor availability")
		httputil.WriteUpstreamError(w, "Failed to log availability")
		return
	}

	httputil.WriteMessage(w, messageDonorAvailable)
}

func writeDispatchResult(w http.ResponseWriter, result *model.DispatchResult) {
	switch result.Status {
	case model.DispatchAlreadySent:
		httputil.WriteMessage(w, model.MessageAlreadySent)
	case model.DispatchNoRecipients:
		httputil.WriteMessage(w, model.MessageNoAdminTokens)
	default:
		httputil.WriteJSON(w, http.StatusOK, result.Response)
	}
}

func writeDispatchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrTokensRequired),
		errors.Is(err, model.ErrRequestIDRequired),
		errors.Is(err, model.ErrMissingAdminFields):
		httputil.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrDispatchInProgress):
		httputil.WriteConflict(w, "Notification is being sent, retry later")
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("dispatch failed")
		httputil.WriteUpstreamError(w, "Failed to send notification")
	}
}
