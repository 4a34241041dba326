package reset

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-account/pkg/account"
	"github.com/tendant/simple-account/pkg/gateway"
	"github.com/tendant/simple-account/pkg/notification"
	"github.com/tendant/simple-account/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultTTL is the validity window of a reset challenge and its token.
	DefaultTTL = time.Hour

	// DefaultMaxAttempts bounds wrong guesses per record.
	DefaultMaxAttempts = 5

	tokenBytes = 32
)

var codePattern = regexp.MustCompile(`^\d{6}$`)

// Service drives the recovery state machine. It implements gateway.CodeSink
// so the delivery gateway can attach generated codes to pending records.
type Service struct {
	repo        Repository
	gw          gateway.Gateway
	accounts    account.Repository
	ttl         time.Duration
	maxAttempts int
	hashCost    int
}

// Option configures the reset service
type Option func(*Service)

// WithTTL overrides the challenge validity window
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

// WithHashCost overrides the bcrypt cost, mainly to keep tests fast
func WithHashCost(cost int) Option {
	return func(s *Service) {
		s.hashCost = cost
	}
}

// NewService creates a new reset service
func NewService(repo Repository, gw gateway.Gateway, accounts account.Repository, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		gw:          gw,
		accounts:    accounts,
		ttl:         DefaultTTL,
		maxAttempts: DefaultMaxAttempts,
		hashCost:    account.DefaultHashCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func noticeFor(resetType Type) (notification.NoticeType, error) {
	switch resetType {
	case TypePassword:
		return notification.PasswordResetNotice, nil
	case TypeUsername:
		return notification.UsernameRecoveryNotice, nil
	default:
		return "", fmt.Errorf("unknown reset type: %s", resetType)
	}
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// RequestReset starts a recovery challenge for the email. The returned expiry
// is computed the same way whether or not the email belongs to an account, so
// the response leaks no existence signal; for unknown emails no record is
// created and nothing is sent.
func (s *Service) RequestReset(ctx context.Context, email string, resetType Type) (time.Time, error) {
	notice, err := noticeFor(resetType)
	if err != nil {
		return time.Time{}, err
	}

	expiresAt := time.Now().UTC().Add(s.ttl)

	acct, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			slog.Info("Reset requested for unknown email", "type", resetType, "email", utils.MaskEmail(email))
			return expiresAt, nil
		}
		return time.Time{}, err
	}

	token, err := generateToken()
	if err != nil {
		slog.Error("Failed to generate reset token", "error", err)
		return time.Time{}, err
	}

	rec := Record{
		ID:        uuid.New(),
		AccountID: acct.ID,
		Email:     email,
		Type:      resetType,
		Token:     token,
		Status:    StatusPending,
		ExpiresAt: expiresAt,
	}

	created, err := s.repo.InvalidateAndCreate(ctx, rec)
	if err != nil {
		slog.Error("Failed to create reset record", "type", resetType, "error", err)
		return time.Time{}, err
	}

	err = s.gw.Deliver(ctx, gateway.Delivery{
		RecordID:  created.ID,
		Recipient: email,
		Channel:   gateway.ChannelEmail,
		Notice:    notice,
		ExpiresAt: created.ExpiresAt,
	})
	if err != nil {
		slog.Error("Reset code delivery failed, rolling back record", "recordId", created.ID, "error", err)
		if delErr := s.repo.Delete(ctx, created.ID); delErr != nil {
			slog.Error("Failed to roll back reset record", "recordId", created.ID, "error", delErr)
		}
		return time.Time{}, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	slog.Info("Reset challenge issued", "recordId", created.ID, "type", resetType, "email", utils.MaskEmail(email))
	return created.ExpiresAt, nil
}

// AssignCode attaches a delivered code to a pending record. Called by the
// gateway, or by the relay callback when an external system generates codes.
func (s *Service) AssignCode(ctx context.Context, recordID uuid.UUID, code string) error {
	if !codePattern.MatchString(code) {
		return ErrInvalidCode
	}
	return s.repo.AssignCode(ctx, recordID, code)
}

// VerifyCode checks a guess against the live record for the email and type.
// On success the record moves to verified and the reset token is revealed so
// the final action can proceed without replaying the code.
func (s *Service) VerifyCode(ctx context.Context, email string, resetType Type, code string) (string, error) {
	rec, err := s.repo.GetActive(ctx, email, resetType)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return "", ErrCodeInvalidOrExpired
		}
		return "", err
	}

	if rec.Expired(time.Now().UTC()) {
		if err := s.repo.SetStatus(ctx, rec.ID, StatusExhausted); err != nil {
			slog.Error("Failed to exhaust expired record", "recordId", rec.ID, "error", err)
		}
		return "", ErrCodeInvalidOrExpired
	}

	if _, err := s.repo.IncrementAttempts(ctx, rec.ID, s.maxAttempts); err != nil {
		if errors.Is(err, ErrTooManyAttempts) {
			if setErr := s.repo.SetStatus(ctx, rec.ID, StatusExhausted); setErr != nil {
				slog.Error("Failed to exhaust record", "recordId", rec.ID, "error", setErr)
			}
			return "", ErrTooManyAttempts
		}
		return "", err
	}

	if rec.Status != StatusCodeAssigned || rec.Code != code {
		return "", ErrCodeInvalidOrExpired
	}

	if err := s.repo.SetStatus(ctx, rec.ID, StatusVerified); err != nil {
		return "", err
	}

	slog.Info("Reset code verified", "recordId", rec.ID, "type", resetType)
	return rec.Token, nil
}

// consumable loads the record for a token and checks it can still perform an
// action of the given type.
func (s *Service) consumable(ctx context.Context, token string, resetType Type) (Record, error) {
	rec, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return Record{}, ErrTokenInvalidOrExpired
		}
		return Record{}, err
	}
	if rec.Type != resetType || !rec.Active() || rec.Expired(time.Now().UTC()) {
		return Record{}, ErrTokenInvalidOrExpired
	}
	return rec, nil
}

// ConsumePasswordReset applies a new password to the record's account and
// retires the token. A consumed or expired token always fails, even if it
// was valid before.
func (s *Service) ConsumePasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < account.MinPasswordLength {
		return account.ErrPasswordTooShort
	}

	rec, err := s.consumable(ctx, token, TypePassword)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		slog.Error("Failed to hash new password", "error", err)
		return err
	}

	if err := s.accounts.UpdatePasswordHash(ctx, rec.AccountID, string(hash)); err != nil {
		slog.Error("Failed to update password", "accountId", rec.AccountID, "error", err)
		return err
	}

	if err := s.repo.MarkConsumed(ctx, rec.ID); err != nil {
		return err
	}

	slog.Info("Password reset", "accountId", rec.AccountID)
	return nil
}

// ConsumeUsernameRecovery returns the account's username and retires the
// token without mutating the account.
func (s *Service) ConsumeUsernameRecovery(ctx context.Context, token string) (string, error) {
	rec, err := s.consumable(ctx, token, TypeUsername)
	if err != nil {
		return "", err
	}

	acct, err := s.accounts.GetByID(ctx, rec.AccountID)
	if err != nil {
		return "", err
	}

	if err := s.repo.MarkConsumed(ctx, rec.ID); err != nil {
		return "", err
	}

	slog.Info("Username recovered", "accountId", rec.AccountID)
	return acct.Username, nil
}
