package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-account/pkg/account"
	"github.com/tendant/simple-account/pkg/gateway"
	"github.com/tendant/simple-account/pkg/notification"
)

const (
	// DefaultTTL is the validity window of an issued code.
	DefaultTTL = 5 * time.Minute

	// DefaultMaxAttempts bounds wrong guesses per record.
	DefaultMaxAttempts = 5
)

var codePattern = regexp.MustCompile(`^\d{6}$`)

// Service issues and checks verification codes. It implements
// gateway.CodeSink so the delivery gateway can attach the generated code to
// the pending record before sending it out.
type Service struct {
	repo        Repository
	gw          gateway.Gateway
	accounts    account.Repository
	ttl         time.Duration
	maxAttempts int
}

// Option configures the verification service
type Option func(*Service)

// WithTTL overrides the code validity window
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.ttl = ttl
	}
}

// WithMaxAttempts overrides the wrong-guess budget
func WithMaxAttempts(max int) Option {
	return func(s *Service) {
		s.maxAttempts = max
	}
}

// NewService creates a new verification service. accounts may be nil, in
// which case verified addresses are not flagged back onto accounts.
func NewService(repo Repository, gw gateway.Gateway, accounts account.Repository, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		gw:          gw,
		accounts:    accounts,
		ttl:         DefaultTTL,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func noticeFor(purpose Purpose) (gateway.Channel, notification.NoticeType, error) {
	switch purpose {
	case PurposeEmail:
		return gateway.ChannelEmail, notification.EmailVerificationNotice, nil
	case PurposeMobile:
		return gateway.ChannelSMS, notification.MobileVerificationNotice, nil
	default:
		return "", "", fmt.Errorf("unknown verification purpose: %s", purpose)
	}
}

// Issue creates a fresh pending record for the address, invalidating any
// earlier active one, and hands it to the gateway for code delivery. If
// delivery fails the record is deleted so the address holds no live code.
func (s *Service) Issue(ctx context.Context, address string, purpose Purpose) (Record, error) {
	channel, notice, err := noticeFor(purpose)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:        uuid.New(),
		Address:   address,
		Purpose:   purpose,
		Status:    StatusPending,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}

	created, err := s.repo.InvalidateAndCreate(ctx, rec)
	if err != nil {
		slog.Error("Failed to create verification record", "purpose", purpose, "error", err)
		return Record{}, err
	}

	err = s.gw.Deliver(ctx, gateway.Delivery{
		RecordID:  created.ID,
		Recipient: address,
		Channel:   channel,
		Notice:    notice,
		ExpiresAt: created.ExpiresAt,
	})
	if err != nil {
		slog.Error("Code delivery failed, rolling back record", "recordId", created.ID, "error", err)
		if delErr := s.repo.Delete(ctx, created.ID); delErr != nil {
			slog.Error("Failed to roll back verification record", "recordId", created.ID, "error", delErr)
		}
		return Record{}, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	slog.Info("Verification code issued", "recordId", created.ID, "purpose", purpose)
	return created, nil
}

// AssignCode attaches a delivered code to a pending record. Called by the
// gateway, or by the relay callback when an external system generates codes.
func (s *Service) AssignCode(ctx context.Context, recordID uuid.UUID, code string) error {
	if !codePattern.MatchString(code) {
		return ErrInvalidCode
	}
	return s.repo.AssignCode(ctx, recordID, code)
}

// Verify checks a guess against the live record for the address. Wrong
// guesses burn an attempt; spending the whole budget exhausts the record.
// Expiry is enforced lazily here, no background sweeper is involved.
func (s *Service) Verify(ctx context.Context, address string, purpose Purpose, code string) error {
	rec, err := s.repo.GetActive(ctx, address, purpose)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return ErrCodeInvalidOrExpired
		}
		return err
	}

	if rec.Expired(time.Now().UTC()) {
		if err := s.repo.SetStatus(ctx, rec.ID, StatusExhausted); err != nil {
			slog.Error("Failed to exhaust expired record", "recordId", rec.ID, "error", err)
		}
		return ErrCodeInvalidOrExpired
	}

	if _, err := s.repo.IncrementAttempts(ctx, rec.ID, s.maxAttempts); err != nil {
		if errors.Is(err, ErrTooManyAttempts) {
			if setErr := s.repo.SetStatus(ctx, rec.ID, StatusExhausted); setErr != nil {
				slog.Error("Failed to exhaust record", "recordId", rec.ID, "error", setErr)
			}
			return ErrTooManyAttempts
		}
		return err
	}

	if rec.Status != StatusCodeAssigned || rec.Code != code {
		return ErrCodeInvalidOrExpired
	}

	if err := s.repo.SetStatus(ctx, rec.ID, StatusVerified); err != nil {
		return err
	}

	s.flagAccountVerified(ctx, address, purpose)

	slog.Info("Address verified", "recordId", rec.ID, "purpose", purpose)
	return nil
}

// flagAccountVerified marks the owning account's address as verified. The
// record itself is already verified, so a missing account is not an error.
func (s *Service) flagAccountVerified(ctx context.Context, address string, purpose Purpose) {
	if s.accounts == nil {
		return
	}

	var err error
	switch purpose {
	case PurposeEmail:
		err = s.accounts.MarkEmailVerified(ctx, address)
	case PurposeMobile:
		err = s.accounts.MarkMobileVerified(ctx, address)
	}
	if err != nil && !errors.Is(err, account.ErrAccountNotFound) {
		slog.Error("Failed to flag account address as verified", "purpose", purpose, "error", err)
	}
}
