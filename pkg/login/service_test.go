package login

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-account/pkg/account"
	"github.com/tendant/simple-account/pkg/loginattempt"
	"github.com/tendant/simple-account/pkg/tokengenerator"
	"golang.org/x/crypto/bcrypt"
)

func newTestSetup(t *testing.T) (*Service, account.Repository, *loginattempt.Service) {
	t.Helper()

	accounts := account.NewInMemRepository()
	attempts := loginattempt.NewService(loginattempt.NewInMemRepository())
	tokens := tokengenerator.NewJwtTokenGenerator("test-secret", "simple-account", "simple-account")
	return NewService(accounts, attempts, tokens), accounts, attempts
}

func seedCompletedAccount(t *testing.T, accounts account.Repository, active bool) account.Account {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	acct, err := accounts.Create(context.Background(), account.Account{
		ID:    uuid.New(),
		Email: "jane@example.com",
	})
	require.NoError(t, err)

	acct.Username = "janedoe"
	acct.PasswordHash = string(hash)
	acct.RegistrationStep = account.StepProfile
	acct.RegistrationCompleted = true
	acct.IsActive = active
	acct, err = accounts.Update(context.Background(), acct)
	require.NoError(t, err)
	return acct
}

func lastAttempt(t *testing.T, attempts *loginattempt.Service, username string) loginattempt.Attempt {
	t.Helper()

	list, err := attempts.List(context.Background(), username, 1)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	return list[0]
}

func TestLoginSuccess(t *testing.T) {
	service, accounts, attempts := newTestSetup(t)
	ctx := context.Background()

	acct := seedCompletedAccount(t, accounts, true)

	result, err := service.Login(ctx, LoginParams{
		Identifier: "janedoe",
		Password:   "password123",
		IP:         "192.0.2.1",
		UserAgent:  "test-agent",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), result.ExpiresAt, 5*time.Second)
	assert.Equal(t, acct.ID, result.Account.ID)

	stored, err := accounts.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)

	attempt := lastAttempt(t, attempts, "janedoe")
	assert.True(t, attempt.Success)
	assert.Equal(t, loginattempt.ReasonNone, attempt.Reason)
	assert.Equal(t, "192.0.2.1", attempt.IP)
}

func TestLoginByEmail(t *testing.T) {
	service, accounts, _ := newTestSetup(t)

	seedCompletedAccount(t, accounts, true)

	_, err := service.Login(context.Background(), LoginParams{
		Identifier: "jane@example.com",
		Password:   "password123",
	})
	assert.NoError(t, err)
}

func TestLoginFailureReasons(t *testing.T) {
	service, accounts, attempts := newTestSetup(t)
	ctx := context.Background()

	seedCompletedAccount(t, accounts, true)

	tests := []struct {
		name       string
		identifier string
		password   string
		reason     loginattempt.FailureReason
	}{
		{"unknown user", "ghost", "password123", loginattempt.ReasonInvalidUsername},
		{"wrong password", "janedoe", "wrong", loginattempt.ReasonInvalidPassword},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Login(ctx, LoginParams{Identifier: tc.identifier, Password: tc.password})
			// the caller always gets the same generic error
			assert.ErrorIs(t, err, ErrInvalidCredentials)

			attempt := lastAttempt(t, attempts, tc.identifier)
			assert.False(t, attempt.Success)
			assert.Equal(t, tc.reason, attempt.Reason)
		})
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	service, accounts, attempts := newTestSetup(t)

	seedCompletedAccount(t, accounts, false)

	_, err := service.Login(context.Background(), LoginParams{
		Identifier: "janedoe",
		Password:   "password123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	attempt := lastAttempt(t, attempts, "janedoe")
	assert.Equal(t, loginattempt.ReasonAccountInactive, attempt.Reason)
}

func TestLoginIncompleteRegistration(t *testing.T) {
	service, accounts, attempts := newTestSetup(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	acct, err := accounts.Create(ctx, account.Account{ID: uuid.New(), Email: "john@example.com"})
	require.NoError(t, err)
	acct.Username = "johndoe"
	acct.PasswordHash = string(hash)
	acct.RegistrationStep = account.StepCredentials
	acct.IsActive = true
	_, err = accounts.Update(ctx, acct)
	require.NoError(t, err)

	_, err = service.Login(ctx, LoginParams{Identifier: "johndoe", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	attempt := lastAttempt(t, attempts, "johndoe")
	assert.Equal(t, loginattempt.ReasonAccountInactive, attempt.Reason)
}

func TestAuthenticate(t *testing.T) {
	service, accounts, _ := newTestSetup(t)
	ctx := context.Background()

	acct := seedCompletedAccount(t, accounts, true)

	result, err := service.Login(ctx, LoginParams{Identifier: "janedoe", Password: "password123"})
	require.NoError(t, err)

	authed, err := service.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, authed.ID)

	_, err = service.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// deactivation invalidates outstanding sessions
	stored, err := accounts.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	stored.IsActive = false
	_, err = accounts.Update(ctx, stored)
	require.NoError(t, err)

	_, err = service.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
