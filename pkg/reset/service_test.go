package reset

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-account/pkg/account"
	"github.com/tendant/simple-account/pkg/gateway"
	"github.com/tendant/simple-account/pkg/notification"
	"golang.org/x/crypto/bcrypt"
)

func newTestSetup(t *testing.T, opts ...Option) (*Service, *gateway.MockGateway, account.Repository) {
	t.Helper()

	gw := gateway.NewMockGateway()
	gw.Code = "123456"

	accounts := account.NewInMemRepository()
	opts = append([]Option{WithHashCost(bcrypt.MinCost)}, opts...)
	service := NewService(NewInMemRepository(), gw, accounts, opts...)

	gw.RegisterSink(notification.PasswordResetNotice, service)
	gw.RegisterSink(notification.UsernameRecoveryNotice, service)
	return service, gw, accounts
}

func seedAccount(t *testing.T, accounts account.Repository) account.Account {
	t.Helper()

	acct, err := accounts.Create(context.Background(), account.Account{
		ID:    uuid.New(),
		Email: "jane@example.com",
	})
	require.NoError(t, err)

	acct.Username = "janedoe"
	acct, err = accounts.Update(context.Background(), acct)
	require.NoError(t, err)
	return acct
}

func TestPasswordResetFlow(t *testing.T) {
	service, _, accounts := newTestSetup(t)
	ctx := context.Background()

	acct := seedAccount(t, accounts)

	expiresAt, err := service.RequestReset(ctx, "jane@example.com", TypePassword)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(DefaultTTL), expiresAt, 5*time.Second)

	token, err := service.VerifyCode(ctx, "jane@example.com", TypePassword, "123456")
	require.NoError(t, err)
	assert.Len(t, token, 64)

	require.NoError(t, service.ConsumePasswordReset(ctx, token, "new-password-1"))

	stored, err := accounts.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new-password-1")))
}

func TestRequestResetUnknownEmail(t *testing.T) {
	service, gw, _ := newTestSetup(t)
	ctx := context.Background()

	// response shape is identical for unknown emails
	expiresAt, err := service.RequestReset(ctx, "nobody@example.com", TypePassword)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(DefaultTTL), expiresAt, 5*time.Second)

	// but nothing is created or sent
	assert.Empty(t, gw.Deliveries)
	_, err = service.VerifyCode(ctx, "nobody@example.com", TypePassword, "123456")
	assert.ErrorIs(t, err, ErrCodeInvalidOrExpired)
}

func TestTokenSingleUse(t *testing.T) {
	service, _, accounts := newTestSetup(t)
	ctx := context.Background()

	seedAccount(t, accounts)

	_, err := service.RequestReset(ctx, "jane@example.com", TypePassword)
	require.NoError(t, err)

	token, err := service.VerifyCode(ctx, "jane@example.com", TypePassword, "123456")
	require.NoError(t, err)

	require.NoError(t, service.ConsumePasswordReset(ctx, token, "new-password-1"))

	err = service.ConsumePasswordReset(ctx, token, "another-password")
	assert.ErrorIs(t, err, ErrTokenInvalidOrExpired)
}

func TestConsumeValidation(t *testing.T) {
	service, _, accounts := newTestSetup(t)
	ctx := context.Background()

	seedAccount(t, accounts)

	_, err := service.RequestReset(ctx, "jane@example.com", TypePassword)
	require.NoError(t, err)

	token, err := service.VerifyCode(ctx, "jane@example.com", TypePassword, "123456")
	require.NoError(t, err)

	err = service.ConsumePasswordReset(ctx, token, "short")
	assert.ErrorIs(t, err, account.ErrPasswordTooShort)

	err = service.ConsumePasswordReset(ctx, "not-a-token", "long-enough-password")
	assert.ErrorIs(t, err, ErrTokenInvalidOrExpired)

	// a password token cannot drive username recovery
	_, err = service.ConsumeUsernameRecovery(ctx, token)
	assert.ErrorIs(t, err, ErrTokenInvalidOrExpired)
}

func TestUsernameRecoveryFlow(t *testing.T) {
	service, _, accounts := newTestSetup(t)
	ctx := context.Background()

	acct := seedAccount(t, accounts)

	_, err := service.RequestReset(ctx, "jane@example.com", TypeUsername)
	require.NoError(t, err)

	token, err := service.VerifyCode(ctx, "jane@example.com", TypeUsername, "123456")
	require.NoError(t, err)

	username, err := service.ConsumeUsernameRecovery(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "janedoe", username)

	// single use, and the account itself is untouched
	_, err = service.ConsumeUsernameRecovery(ctx, token)
	assert.ErrorIs(t, err, ErrTokenInvalidOrExpired)

	stored, err := accounts.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "janedoe", stored.Username)
}

func TestVerifyCodeAttemptBudget(t *testing.T) {
	service, _, accounts := newTestSetup(t)
	ctx := context.Background()

	seedAccount(t, accounts)

	_, err := service.RequestReset(ctx, "jane@example.com", TypePassword)
	require.NoError(t, err)

	for i := 0; i < DefaultMaxAttempts; i++ {
		_, err = service.VerifyCode(ctx, "jane@example.com", TypePassword, "000000")
		assert.ErrorIs(t, err, ErrCodeInvalidOrExpired)
	}

	_, err = service.VerifyCode(ctx, "jane@example.com", TypePassword, "123456")
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestExpiredTokenNotConsumable(t *testing.T) {
	service, _, accounts := newTestSetup(t, WithTTL(time.Millisecond))
	ctx := context.Background()

	seedAccount(t, accounts)

	_, err := service.RequestReset(ctx, "jane@example.com", TypePassword)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = service.VerifyCode(ctx, "jane@example.com", TypePassword, "123456")
	assert.ErrorIs(t, err, ErrCodeInvalidOrExpired)
}

func TestReissueSupersedesPreviousChallenge(t *testing.T) {
	service, gw, accounts := newTestSetup(t)
	ctx := context.Background()

	seedAccount(t, accounts)

	gw.Code = "111111"
	_, err := service.RequestReset(ctx, "jane@example.com", TypePassword)
	require.NoError(t, err)

	gw.Code = "222222"
	_, err = service.RequestReset(ctx, "jane@example.com", TypePassword)
	require.NoError(t, err)

	_, err = service.VerifyCode(ctx, "jane@example.com", TypePassword, "111111")
	assert.ErrorIs(t, err, ErrCodeInvalidOrExpired)

	token, err := service.VerifyCode(ctx, "jane@example.com", TypePassword, "222222")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// password and username challenges do not interfere
	gw.Code = "333333"
	_, err = service.RequestReset(ctx, "jane@example.com", TypeUsername)
	require.NoError(t, err)

	_, err = service.VerifyCode(ctx, "jane@example.com", TypeUsername, "333333")
	assert.NoError(t, err)
}

func TestRequestResetDeliveryFailureRollsBack(t *testing.T) {
	service, gw, accounts := newTestSetup(t)
	ctx := context.Background()

	seedAccount(t, accounts)

	gw.Err = assert.AnError
	_, err := service.RequestReset(ctx, "jane@example.com", TypePassword)
	assert.ErrorIs(t, err, ErrDeliveryFailed)

	gw.Err = nil
	_, err = service.VerifyCode(ctx, "jane@example.com", TypePassword, "123456")
	assert.ErrorIs(t, err, ErrCodeInvalidOrExpired)
}
