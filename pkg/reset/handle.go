package reset

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-account/pkg/account"
)

// RequestResetRequest starts a recovery challenge
type RequestResetRequest struct {
	Email string `json:"email"`
}

// VerifyCodeRequest presents a challenge code guess
type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ResetPasswordRequest consumes a password reset token
type ResetPasswordRequest struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

// RequestResetResponse reports when the challenge stops being valid
type RequestResetResponse struct {
	ExpiresAt string `json:"expiresAt"`
}

// VerifyCodeResponse reveals the token after a successful challenge
type VerifyCodeResponse struct {
	ResetToken string `json:"resetToken"`
}

// UsernameRecoveryResponse returns the recovered username
type UsernameRecoveryResponse struct {
	Username string `json:"username"`
}

// OkResponse confirms a consumed action
type OkResponse struct {
	Ok bool `json:"ok"`
}

// ErrorResponse is the error payload for reset endpoints
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler exposes the recovery endpoints
type Handler struct {
	service *Service
}

// NewHandler creates a new reset handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the recovery routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/request-password-reset", h.RequestPasswordReset)
	r.Post("/verify-reset-code", h.VerifyResetCode)
	r.Post("/reset-password", h.ResetPassword)
	r.Post("/request-username-recovery", h.RequestUsernameRecovery)
	r.Post("/verify-username-recovery", h.VerifyUsernameRecovery)
}

// RequestPasswordReset handles POST /request-password-reset
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	h.requestReset(w, r, TypePassword)
}

// RequestUsernameRecovery handles POST /request-username-recovery
func (h *Handler) RequestUsernameRecovery(w http.ResponseWriter, r *http.Request) {
	h.requestReset(w, r, TypeUsername)
}

func (h *Handler) requestReset(w http.ResponseWriter, r *http.Request, resetType Type) {
	var req RequestResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Email is required"})
		return
	}

	expiresAt, err := h.service.RequestReset(r.Context(), req.Email, resetType)
	if err != nil {
		message := "An internal error occurred"
		if errors.Is(err, ErrDeliveryFailed) {
			message = "Failed to send reset code, please try again"
		} else {
			slog.Error("Failed to request reset", "type", resetType, "error", err)
		}
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: message})
		return
	}

	// same response whether or not the email is known
	render.Status(r, http.StatusOK)
	render.JSON(w, r, RequestResetResponse{ExpiresAt: expiresAt.Format(time.RFC3339)})
}

// VerifyResetCode handles POST /verify-reset-code
func (h *Handler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Code == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Email and code are required"})
		return
	}

	token, err := h.service.VerifyCode(r.Context(), req.Email, TypePassword, req.Code)
	if err != nil {
		h.renderChallengeError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, VerifyCodeResponse{ResetToken: token})
}

// ResetPassword handles POST /reset-password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ResetToken == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Reset token is required"})
		return
	}

	err := h.service.ConsumePasswordReset(r.Context(), req.ResetToken, req.NewPassword)
	if err != nil {
		status := http.StatusBadRequest
		message := err.Error()
		if !errors.Is(err, ErrTokenInvalidOrExpired) && !errors.Is(err, account.ErrPasswordTooShort) {
			slog.Error("Failed to consume password reset", "error", err)
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

// VerifyUsernameRecovery handles POST /verify-username-recovery. A correct
// code consumes the challenge in one step and returns the username.
func (h *Handler) VerifyUsernameRecovery(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Code == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Email and code are required"})
		return
	}

	token, err := h.service.VerifyCode(r.Context(), req.Email, TypeUsername, req.Code)
	if err != nil {
		h.renderChallengeError(w, r, err)
		return
	}

	username, err := h.service.ConsumeUsernameRecovery(r.Context(), token)
	if err != nil {
		h.renderChallengeError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, UsernameRecoveryResponse{Username: username})
}

func (h *Handler) renderChallengeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadRequest
	message := err.Error()

	switch {
	case errors.Is(err, ErrCodeInvalidOrExpired),
		errors.Is(err, ErrTooManyAttempts),
		errors.Is(err, ErrTokenInvalidOrExpired):
	default:
		slog.Error("Reset challenge failed", "error", err)
		status = http.StatusInternalServerError
		message = "An internal error occurred"
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message})
}
