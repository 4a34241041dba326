package account

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultHashCost keeps bcrypt slow enough that offline guessing is
	// impractical.
	DefaultHashCost = 12

	// MinPasswordLength is the shortest password accepted at step 2 and on
	// password reset.
	MinPasswordLength = 8
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]{3,30}$`)

// RegistrationService drives accounts through the registration steps and
// answers profile queries.
type RegistrationService struct {
	repo     Repository
	hashCost int
}

// RegistrationServiceOption configures the registration service
type RegistrationServiceOption func(*RegistrationService)

// WithHashCost overrides the bcrypt cost, mainly to keep tests fast.
func WithHashCost(cost int) RegistrationServiceOption {
	return func(s *RegistrationService) {
		s.hashCost = cost
	}
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(repo Repository, opts ...RegistrationServiceOption) *RegistrationService {
	s := &RegistrationService{
		repo:     repo,
		hashCost: DefaultHashCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PersonalInfoParams carries the step 1 payload
type PersonalInfoParams struct {
	FirstName          string
	LastName           string
	CountryOfResidence string
	Nationality        string
	Email              string
	DateOfBirth        time.Time
	IsOver18           bool
	AcceptedTerms      bool
}

// CredentialsParams carries the step 2 payload
type CredentialsParams struct {
	AccountID        uuid.UUID
	Username         string
	Password         string
	SecurityQuestion string
	SecurityAnswer   string
}

// ProfileParams carries the step 3 payload
type ProfileParams struct {
	AccountID        uuid.UUID
	Street           string
	HouseNumber      string
	City             string
	PostalCode       string
	MobileNumber     string
	BankrollCurrency string
}

// BeginRegistration creates an inactive account at step 1. The email must not
// belong to an existing account.
func (s *RegistrationService) BeginRegistration(ctx context.Context, params PersonalInfoParams) (Account, error) {
	if !params.IsOver18 {
		return Account{}, ErrAgeNotConfirmed
	}
	if !params.AcceptedTerms {
		return Account{}, ErrTermsNotAccepted
	}

	_, err := s.repo.FindByEmail(ctx, params.Email)
	if err == nil {
		return Account{}, ErrEmailTaken
	}
	if !errors.Is(err, ErrAccountNotFound) {
		slog.Error("Failed to check email uniqueness", "error", err)
		return Account{}, err
	}

	acct := Account{
		ID:                 uuid.New(),
		FirstName:          params.FirstName,
		LastName:           params.LastName,
		CountryOfResidence: params.CountryOfResidence,
		Nationality:        params.Nationality,
		Email:              params.Email,
		DateOfBirth:        params.DateOfBirth,
		IsOver18:           params.IsOver18,
		AcceptedTerms:      params.AcceptedTerms,
		IsActive:           false,
		RegistrationStep:   StepPersonalInfo,
	}

	created, err := s.repo.Create(ctx, acct)
	if err != nil {
		slog.Error("Failed to create account", "error", err)
		return Account{}, err
	}

	slog.Info("Registration started", "accountId", created.ID)
	return created, nil
}

// SetCredentials runs step 2: username, password and security question.
// The account must be exactly at step 1.
func (s *RegistrationService) SetCredentials(ctx context.Context, params CredentialsParams) (Account, error) {
	if !usernamePattern.MatchString(params.Username) {
		return Account{}, ErrInvalidUsername
	}
	if len(params.Password) < MinPasswordLength {
		return Account{}, ErrPasswordTooShort
	}

	acct, err := s.repo.GetByID(ctx, params.AccountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return Account{}, ErrInvalidRegistrationStep
		}
		return Account{}, err
	}
	if acct.RegistrationStep != StepPersonalInfo {
		return Account{}, ErrInvalidRegistrationStep
	}

	if _, err := s.repo.FindByUsername(ctx, params.Username); err == nil {
		return Account{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrAccountNotFound) {
		return Account{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.hashCost)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		return Account{}, err
	}

	// Security answers are case-insensitive, so normalize before hashing.
	answerHash, err := bcrypt.GenerateFromPassword([]byte(strings.ToLower(params.SecurityAnswer)), s.hashCost)
	if err != nil {
		slog.Error("Failed to hash security answer", "error", err)
		return Account{}, err
	}

	acct.Username = params.Username
	acct.PasswordHash = string(passwordHash)
	acct.SecurityQuestion = params.SecurityQuestion
	acct.SecurityAnswerHash = string(answerHash)
	acct.RegistrationStep = StepCredentials

	updated, err := s.repo.Update(ctx, acct)
	if err != nil {
		slog.Error("Failed to save credentials", "accountId", acct.ID, "error", err)
		return Account{}, err
	}

	slog.Info("Credentials set", "accountId", updated.ID)
	return updated, nil
}

// CompleteProfile runs step 3: address, mobile number and bankroll currency.
// On success the account becomes active and registration is complete.
func (s *RegistrationService) CompleteProfile(ctx context.Context, params ProfileParams) (Account, error) {
	if !IsSupportedCurrency(params.BankrollCurrency) {
		return Account{}, ErrUnsupportedCurrency
	}

	acct, err := s.repo.GetByID(ctx, params.AccountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return Account{}, ErrInvalidRegistrationStep
		}
		return Account{}, err
	}
	if acct.RegistrationStep != StepCredentials {
		return Account{}, ErrInvalidRegistrationStep
	}

	if _, err := s.repo.FindByMobileNumber(ctx, params.MobileNumber); err == nil {
		return Account{}, ErrMobileTaken
	} else if !errors.Is(err, ErrAccountNotFound) {
		return Account{}, err
	}

	acct.Street = params.Street
	acct.HouseNumber = params.HouseNumber
	acct.City = params.City
	acct.PostalCode = params.PostalCode
	acct.MobileNumber = params.MobileNumber
	acct.BankrollCurrency = params.BankrollCurrency
	acct.RegistrationStep = StepProfile
	acct.RegistrationCompleted = true
	acct.IsActive = true

	updated, err := s.repo.Update(ctx, acct)
	if err != nil {
		slog.Error("Failed to complete profile", "accountId", acct.ID, "error", err)
		return Account{}, err
	}

	slog.Info("Registration completed", "accountId", updated.ID)
	return updated, nil
}

// GetAccount retrieves an account by id
func (s *RegistrationService) GetAccount(ctx context.Context, id uuid.UUID) (Account, error) {
	return s.repo.GetByID(ctx, id)
}

// CheckUsernameAvailable reports whether the username is valid and unused
func (s *RegistrationService) CheckUsernameAvailable(ctx context.Context, username string) (bool, error) {
	if !usernamePattern.MatchString(username) {
		return false, ErrInvalidUsername
	}
	_, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, ErrAccountNotFound) {
		return true, nil
	}
	return false, err
}

// UpdateProfileParams carries the mutable profile fields. Nil fields are left
// unchanged.
type UpdateProfileParams struct {
	Street           *string
	HouseNumber      *string
	City             *string
	PostalCode       *string
	BankrollCurrency *string
}

// UpdateProfile changes address fields and bankroll currency on a completed
// account. Identity fields (email, username, mobile) are not editable here.
func (s *RegistrationService) UpdateProfile(ctx context.Context, id uuid.UUID, params UpdateProfileParams) (Account, error) {
	acct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if !acct.RegistrationCompleted {
		return Account{}, ErrInvalidRegistrationStep
	}

	if params.Street != nil {
		acct.Street = *params.Street
	}
	if params.HouseNumber != nil {
		acct.HouseNumber = *params.HouseNumber
	}
	if params.City != nil {
		acct.City = *params.City
	}
	if params.PostalCode != nil {
		acct.PostalCode = *params.PostalCode
	}
	if params.BankrollCurrency != nil {
		if !IsSupportedCurrency(*params.BankrollCurrency) {
			return Account{}, ErrUnsupportedCurrency
		}
		acct.BankrollCurrency = *params.BankrollCurrency
	}

	return s.repo.Update(ctx, acct)
}

// Deactivate flips the account inactive. The record is kept.
func (s *RegistrationService) Deactivate(ctx context.Context, id uuid.UUID) error {
	acct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	acct.IsActive = false
	if _, err := s.repo.Update(ctx, acct); err != nil {
		return err
	}
	slog.Info("Account deactivated", "accountId", id)
	return nil
}
