package verification

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-account/pkg/account"
)

// SendRequest asks for a code to be delivered
type SendRequest struct {
	Email        string `json:"email,omitempty"`
	MobileNumber string `json:"mobileNumber,omitempty"`
}

// VerifyRequest presents a code guess
type VerifyRequest struct {
	Email        string `json:"email,omitempty"`
	MobileNumber string `json:"mobileNumber,omitempty"`
	Code         string `json:"code"`
}

// SendResponse reports when the issued code stops being valid
type SendResponse struct {
	ExpiresAt string `json:"expiresAt"`
}

// VerifyResponse confirms a successful verification
type VerifyResponse struct {
	Verified bool `json:"verified"`
}

// StatusResponse reports which of an account's addresses are verified
type StatusResponse struct {
	EmailVerified  bool `json:"emailVerified"`
	MobileVerified bool `json:"mobileVerified"`
}

// ErrorResponse is the error payload for verification endpoints
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler exposes the verification endpoints
type Handler struct {
	service  *Service
	accounts account.Repository
}

// NewHandler creates a new verification handler
func NewHandler(service *Service, accounts account.Repository) *Handler {
	return &Handler{service: service, accounts: accounts}
}

// Routes returns the verification routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/send-email", h.SendEmail)
	r.Post("/verify-email", h.VerifyEmail)
	r.Post("/send-mobile", h.SendMobile)
	r.Post("/verify-mobile", h.VerifyMobile)
	r.Get("/status/{accountID}", h.Status)
	return r
}

// SendEmail handles POST /send-email
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Email is required"})
		return
	}
	h.issue(w, r, req.Email, PurposeEmail)
}

// SendMobile handles POST /send-mobile
func (h *Handler) SendMobile(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MobileNumber == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Mobile number is required"})
		return
	}
	h.issue(w, r, req.MobileNumber, PurposeMobile)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request, address string, purpose Purpose) {
	rec, err := h.service.Issue(r.Context(), address, purpose)
	if err != nil {
		status := http.StatusInternalServerError
		message := "An internal error occurred"
		if errors.Is(err, ErrDeliveryFailed) {
			message = "Failed to send verification code"
		} else {
			slog.Error("Failed to issue verification code", "purpose", purpose, "error", err)
		}
		render.Status(r, status)
		render.JSON(w, r, ErrorResponse{Error: message})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, SendResponse{ExpiresAt: rec.ExpiresAt.Format(time.RFC3339)})
}

// VerifyEmail handles POST /verify-email
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Code == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Email and code are required"})
		return
	}
	h.verify(w, r, req.Email, PurposeEmail, req.Code)
}

// VerifyMobile handles POST /verify-mobile
func (h *Handler) VerifyMobile(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MobileNumber == "" || req.Code == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Mobile number and code are required"})
		return
	}
	h.verify(w, r, req.MobileNumber, PurposeMobile, req.Code)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request, address string, purpose Purpose, code string) {
	err := h.service.Verify(r.Context(), address, purpose, code)
	if err != nil {
		status := http.StatusBadRequest
		message := err.Error()

		switch {
		case errors.Is(err, ErrCodeInvalidOrExpired), errors.Is(err, ErrTooManyAttempts):
		default:
			slog.Error("Verification failed", "purpose", purpose, "error", err)
			status = http.StatusInternalServerError
			message = "An internal error occurred"
		}

		render.Status(r, status)
		render.JSON(w, r, ErrorResponse{Error: message})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, VerifyResponse{Verified: true})
}

// Status handles GET /status/{accountID}
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid account id"})
		return
	}

	acct, err := h.accounts.GetByID(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, ErrorResponse{Error: "Account not found"})
			return
		}
		slog.Error("Failed to load account", "accountId", accountID, "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "An internal error occurred"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, StatusResponse{
		EmailVerified:  acct.EmailVerified,
		MobileVerified: acct.MobileVerified,
	})
}
