package login

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-account/pkg/account"
)

// LoginRequest is the authentication request body
type LoginRequest struct {
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password"`
}

// LoginResponse carries the session token and the authenticated user
type LoginResponse struct {
	Token string          `json:"token"`
	User  account.Account `json:"user"`
}

// ErrorResponse is the error payload for login endpoints
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler exposes the authentication endpoints
type Handler struct {
	service  *Service
	accounts account.Repository
}

// NewHandler creates a new login handler
func NewHandler(service *Service, accounts account.Repository) *Handler {
	return &Handler{service: service, accounts: accounts}
}

// RegisterRoutes attaches the public login routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.Login)
}

// RegisterProtectedRoutes attaches the routes requiring an authenticated
// user. The jwtauth verifier middleware is mounted by the caller.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/me", h.Me)
}

// Login handles POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EmailOrUsername == "" || req.Password == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Email/username and password are required"})
		return
	}

	result, err := h.service.Login(r.Context(), LoginParams{
		Identifier: req.EmailOrUsername,
		Password:   req.Password,
		IP:         clientIP(r),
		UserAgent:  r.UserAgent(),
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, ErrorResponse{Error: ErrInvalidCredentials.Error()})
			return
		}
		slog.Error("Login failed", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "An internal error occurred"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, LoginResponse{Token: result.Token, User: result.Account})
}

// Me handles GET /me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	accountID, err := account.AccountIDFromContext(r)
	if err != nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "Unauthorized"})
		return
	}

	acct, err := h.accounts.GetByID(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, ErrorResponse{Error: "Unauthorized"})
			return
		}
		slog.Error("Failed to load account", "accountId", accountID, "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "An internal error occurred"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, acct)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
