// Package login authenticates completed accounts and issues session tokens.
// Every attempt, successful or not, lands in the login attempt ledger with
// the first failing reason encountered. Callers only ever see a generic
// credential error so the response reveals nothing about which check failed.
package login

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tendant/simple-account/pkg/account"
	"github.com/tendant/simple-account/pkg/loginattempt"
	"github.com/tendant/simple-account/pkg/tokengenerator"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is the uniform login failure. The ledger knows
	// the real reason; the caller does not.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidToken is returned when a session token fails validation
	ErrInvalidToken = errors.New("invalid or expired session token")
)

// Service validates credentials and issues session tokens.
type Service struct {
	accounts account.Repository
	attempts *loginattempt.Service
	tokens   tokengenerator.TokenGenerator
	tokenTTL time.Duration
}

// Option configures the login service
type Option func(*Service)

// WithTokenTTL overrides the session token validity window
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.tokenTTL = ttl
	}
}

// NewService creates a new login service
func NewService(accounts account.Repository, attempts *loginattempt.Service, tokens tokengenerator.TokenGenerator, opts ...Option) *Service {
	s := &Service{
		accounts: accounts,
		attempts: attempts,
		tokens:   tokens,
		tokenTTL: tokengenerator.DefaultSessionExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginParams carries one authentication attempt
type LoginParams struct {
	Identifier string
	Password   string
	IP         string
	UserAgent  string
}

// LoginResult is a successful authentication
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   account.Account
}

// Login resolves the identifier as email or username and checks, in order,
// existence, active flag, registration completeness and the password hash.
// The first failing check decides the ledger reason and short-circuits.
func (s *Service) Login(ctx context.Context, params LoginParams) (LoginResult, error) {
	acct, err := s.accounts.FindByEmailOrUsername(ctx, params.Identifier)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			s.recordFailure(ctx, params, nil, loginattempt.ReasonInvalidUsername)
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if !acct.IsActive {
		s.recordFailure(ctx, params, &acct.ID, loginattempt.ReasonAccountInactive)
		return LoginResult{}, ErrInvalidCredentials
	}

	// incomplete accounts are inactive by construction, but a manual
	// activation must not let a half-registered account log in
	if !acct.RegistrationCompleted {
		s.recordFailure(ctx, params, &acct.ID, loginattempt.ReasonAccountInactive)
		return LoginResult{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(params.Password)); err != nil {
		s.recordFailure(ctx, params, &acct.ID, loginattempt.ReasonInvalidPassword)
		return LoginResult{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.accounts.UpdateLastLoginAt(ctx, acct.ID, now); err != nil {
		slog.Error("Failed to update last login time", "accountId", acct.ID, "error", err)
	}
	acct.LastLoginAt = &now

	token, expiresAt, err := s.tokens.GenerateToken(acct.ID.String(), s.tokenTTL, map[string]interface{}{
		"userId":   acct.ID.String(),
		"email":    acct.Email,
		"username": acct.Username,
	})
	if err != nil {
		return LoginResult{}, err
	}

	s.attempts.Record(ctx, loginattempt.RecordParams{
		Username:  params.Identifier,
		AccountID: &acct.ID,
		IP:        params.IP,
		UserAgent: params.UserAgent,
		Success:   true,
		Reason:    loginattempt.ReasonNone,
	})

	slog.Info("Login succeeded", "accountId", acct.ID)
	return LoginResult{Token: token, ExpiresAt: expiresAt, Account: acct}, nil
}

func (s *Service) recordFailure(ctx context.Context, params LoginParams, accountID *uuid.UUID, reason loginattempt.FailureReason) {
	s.attempts.Record(ctx, loginattempt.RecordParams{
		Username:  params.Identifier,
		AccountID: accountID,
		IP:        params.IP,
		UserAgent: params.UserAgent,
		Success:   false,
		Reason:    reason,
	})
}

// Authenticate validates a session token and loads its account. Inactive
// accounts fail even with a syntactically valid token.
func (s *Service) Authenticate(ctx context.Context, tokenStr string) (account.Account, error) {
	token, err := s.tokens.ParseToken(tokenStr)
	if err != nil {
		return account.Account{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return account.Account{}, ErrInvalidToken
	}
	idStr, ok := claims["userId"].(string)
	if !ok {
		return account.Account{}, ErrInvalidToken
	}
	accountID, err := uuid.Parse(idStr)
	if err != nil {
		return account.Account{}, ErrInvalidToken
	}

	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return account.Account{}, ErrInvalidToken
		}
		return account.Account{}, err
	}
	if !acct.IsActive {
		return account.Account{}, ErrInvalidToken
	}
	return acct, nil
}
