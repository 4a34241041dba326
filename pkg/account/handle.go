package account

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// Handler exposes the registration and profile endpoints
type Handler struct {
	service *RegistrationService
}

// NewHandler creates a new account handler
func NewHandler(service *RegistrationService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the public registration routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/register/step1", h.RegisterStep1)
	r.Post("/register/step2", h.RegisterStep2)
	r.Post("/register/step3", h.RegisterStep3)
	r.Post("/check-username", h.CheckUsername)
}

// RegisterProtectedRoutes attaches the routes requiring an authenticated
// user. The jwtauth verifier middleware is mounted by the caller.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/profile", h.GetProfile)
	r.Put("/profile", h.UpdateProfile)
}

// RegisterStep1 handles POST /register/step1
func (h *Handler) RegisterStep1(w http.ResponseWriter, r *http.Request) {
	var req PersonalInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.DateOfBirth == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Missing required fields"})
		return
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid date of birth"})
		return
	}

	params := PersonalInfoParams{}
	copier.Copy(&params, &req)
	params.DateOfBirth = dob

	acct, err := h.service.BeginRegistration(r.Context(), params)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, StepResponse{UserID: acct.ID.String(), Step: acct.RegistrationStep})
}

// RegisterStep2 handles POST /register/step2
func (h *Handler) RegisterStep2(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	accountID, err := uuid.Parse(req.UserID)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid user id"})
		return
	}

	acct, err := h.service.SetCredentials(r.Context(), CredentialsParams{
		AccountID:        accountID,
		Username:         req.Username,
		Password:         req.Password,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   req.SecurityAnswer,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, StepResponse{UserID: acct.ID.String(), Step: acct.RegistrationStep})
}

// RegisterStep3 handles POST /register/step3
func (h *Handler) RegisterStep3(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	accountID, err := uuid.Parse(req.UserID)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid user id"})
		return
	}

	acct, err := h.service.CompleteProfile(r.Context(), ProfileParams{
		AccountID:        accountID,
		Street:           req.Street,
		HouseNumber:      req.HouseNumber,
		City:             req.City,
		PostalCode:       req.PostalCode,
		MobileNumber:     req.MobileNumber,
		BankrollCurrency: req.BankrollCurrency,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, StepResponse{
		UserID:    acct.ID.String(),
		Step:      acct.RegistrationStep,
		Completed: acct.RegistrationCompleted,
	})
}

// CheckUsername handles POST /check-username
func (h *Handler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	var req CheckUsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	available, err := h.service.CheckUsernameAvailable(r.Context(), req.Username)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, CheckUsernameResponse{Available: available})
}

// GetProfile handles GET /profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	accountID, err := AccountIDFromContext(r)
	if err != nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "Unauthorized"})
		return
	}

	acct, err := h.service.GetAccount(r.Context(), accountID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, acct)
}

// UpdateProfile handles PUT /profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	accountID, err := AccountIDFromContext(r)
	if err != nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	params := UpdateProfileParams{}
	copier.Copy(&params, &req)

	acct, err := h.service.UpdateProfile(r.Context(), accountID, params)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, acct)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "An internal error occurred"

	switch {
	case errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrMobileTaken):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, ErrAgeNotConfirmed),
		errors.Is(err, ErrTermsNotAccepted),
		errors.Is(err, ErrInvalidRegistrationStep),
		errors.Is(err, ErrInvalidUsername),
		errors.Is(err, ErrPasswordTooShort),
		errors.Is(err, ErrUnsupportedCurrency):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, ErrAccountNotFound):
		status = http.StatusNotFound
		message = err.Error()
	default:
		slog.Error("Account operation failed", "error", err)
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message})
}

// AccountIDFromContext extracts the authenticated account id from the
// jwtauth claims.
func AccountIDFromContext(r *http.Request) (uuid.UUID, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return uuid.Nil, err
	}

	idStr, ok := claims["userId"].(string)
	if !ok || idStr == "" {
		return uuid.Nil, errors.New("userId not found in token claims")
	}

	return uuid.Parse(idStr)
}
