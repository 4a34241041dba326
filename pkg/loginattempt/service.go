package loginattempt

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Service writes ledger entries without ever failing its caller.
type Service struct {
	repo Repository
}

// NewService creates a new login attempt service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RecordParams describes one authentication attempt
type RecordParams struct {
	Username  string
	AccountID *uuid.UUID
	IP        string
	UserAgent string
	Success   bool
	Reason    FailureReason
}

// Record appends an attempt to the ledger. Insert failures are logged and
// swallowed: losing an audit row must not break the login path.
func (s *Service) Record(ctx context.Context, params RecordParams) {
	attempt := Attempt{
		ID:        uuid.New(),
		Username:  params.Username,
		AccountID: params.AccountID,
		IP:        params.IP,
		UserAgent: params.UserAgent,
		Success:   params.Success,
		Reason:    params.Reason,
	}
	if attempt.Reason == "" {
		attempt.Reason = ReasonNone
	}

	if err := s.repo.Insert(ctx, attempt); err != nil {
		slog.Error("Failed to record login attempt", "username", params.Username, "error", err)
	}
}

// List returns recent attempts for a username, newest first.
func (s *Service) List(ctx context.Context, username string, limit int) ([]Attempt, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.repo.ListByUsername(ctx, username, limit)
}
