// Package api exposes the relay callback used when an external delivery
// system generates codes instead of the in-process gateway. The callback
// reports the code the relay attached to a pending record.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-account/pkg/reset"
	"github.com/tendant/simple-account/pkg/verification"
)

// SetCodeRequest reports a code assigned by the external relay
type SetCodeRequest struct {
	RecordID string `json:"recordId"`
	Code     string `json:"code"`
}

// OkResponse confirms the code was attached
type OkResponse struct {
	Ok bool `json:"ok"`
}

// ErrorResponse is the error payload for the callback
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler routes relay callbacks to whichever store owns the record.
type Handler struct {
	verifications *verification.Service
	resets        *reset.Service
}

// NewHandler creates a new relay callback handler
func NewHandler(verifications *verification.Service, resets *reset.Service) *Handler {
	return &Handler{verifications: verifications, resets: resets}
}

// Routes returns the relay callback routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/set-code", h.SetCode)
	return r
}

// SetCode handles POST /set-code. Record ids are unique across both stores,
// so the handler tries the verification store first and falls through to the
// reset store when the record is not found there.
func (h *Handler) SetCode(w http.ResponseWriter, r *http.Request) {
	var req SetCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RecordID == "" || req.Code == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Record id and code are required"})
		return
	}

	recordID, err := uuid.Parse(req.RecordID)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid record id"})
		return
	}

	err = h.verifications.AssignCode(r.Context(), recordID, req.Code)
	if errors.Is(err, verification.ErrRecordNotFound) {
		err = h.resets.AssignCode(r.Context(), recordID, req.Code)
	}

	if err != nil {
		status := http.StatusBadRequest
		message := err.Error()

		switch {
		case errors.Is(err, verification.ErrInvalidCode), errors.Is(err, reset.ErrInvalidCode),
			errors.Is(err, verification.ErrRecordFinalized), errors.Is(err, reset.ErrRecordFinalized):
		case errors.Is(err, reset.ErrRecordNotFound):
			status = http.StatusNotFound
			message = "Record not found"
		default:
			slog.Error("Failed to assign code", "recordId", recordID, "error", err)
			status = http.StatusInternalServerError
			message = "An internal error occurred"
		}

		render.Status(r, status)
		render.JSON(w, r, ErrorResponse{Error: message})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, OkResponse{Ok: true})
}
