package verification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-account/pkg/account"
	"github.com/tendant/simple-account/pkg/gateway"
	"github.com/tendant/simple-account/pkg/notification"
)

func newTestSetup(t *testing.T, opts ...Option) (*Service, *gateway.MockGateway, account.Repository) {
	t.Helper()

	gw := gateway.NewMockGateway()
	gw.Code = "123456"

	accounts := account.NewInMemRepository()
	service := NewService(NewInMemRepository(), gw, accounts, opts...)

	gw.RegisterSink(notification.EmailVerificationNotice, service)
	gw.RegisterSink(notification.MobileVerificationNotice, service)
	return service, gw, accounts
}

func seedAccount(t *testing.T, accounts account.Repository, email, mobile string) account.Account {
	t.Helper()

	acct, err := accounts.Create(context.Background(), account.Account{
		ID:           uuid.New(),
		Email:        email,
		MobileNumber: mobile,
	})
	require.NoError(t, err)
	return acct
}

func TestIssueAndVerifyEmail(t *testing.T) {
	service, _, accounts := newTestSetup(t)
	ctx := context.Background()

	acct := seedAccount(t, accounts, "jane@example.com", "")

	rec, err := service.Issue(ctx, "jane@example.com", PurposeEmail)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(DefaultTTL), rec.ExpiresAt, 5*time.Second)

	err = service.Verify(ctx, "jane@example.com", PurposeEmail, "123456")
	require.NoError(t, err)

	stored, err := accounts.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)

	// a verified record accepts no further guesses
	err = service.Verify(ctx, "jane@example.com", PurposeEmail, "123456")
	assert.ErrorIs(t, err, ErrCodeInvalidOrExpired)
}

func TestVerifyMobileFlagsAccount(t *testing.T) {
	service, _, accounts := newTestSetup(t)
	ctx := context.Background()

	acct := seedAccount(t, accounts, "jane@example.com", "+4915112345678")

	_, err := service.Issue(ctx, "+4915112345678", PurposeMobile)
	require.NoError(t, err)

	require.NoError(t, service.Verify(ctx, "+4915112345678", PurposeMobile, "123456"))

	stored, err := accounts.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.True(t, stored.MobileVerified)
	assert.False(t, stored.EmailVerified)
}

func TestReissueInvalidatesPreviousCode(t *testing.T) {
	service, gw, _ := newTestSetup(t)
	ctx := context.Background()

	gw.Code = "111111"
	_, err := service.Issue(ctx, "jane@example.com", PurposeEmail)
	require.NoError(t, err)

	gw.Code = "222222"
	_, err = service.Issue(ctx, "jane@example.com", PurposeEmail)
	require.NoError(t, err)

	err = service.Verify(ctx, "jane@example.com", PurposeEmail, "111111")
	assert.ErrorIs(t, err, ErrCodeInvalidOrExpired)

	err = service.Verify(ctx, "jane@example.com", PurposeEmail, "222222")
	assert.NoError(t, err)
}

func TestIssueDeliveryFailureRollsBack(t *testing.T) {
	service, gw, _ := newTestSetup(t)
	ctx := context.Background()

	gw.Err = errors.New("smtp unreachable")

	_, err := service.Issue(ctx, "jane@example.com", PurposeEmail)
	assert.ErrorIs(t, err, ErrDeliveryFailed)

	// no live record may survive a failed delivery
	err = service.Verify(ctx, "jane@example.com", PurposeEmail, "123456")
	assert.ErrorIs(t, err, ErrCodeInvalidOrExpired)

	// the address can immediately request a new code
	gw.Err = nil
	_, err = service.Issue(ctx, "jane@example.com", PurposeEmail)
	require.NoError(t, err)
	assert.NoError(t, service.Verify(ctx, "jane@example.com", PurposeEmail, "123456"))
}

func TestVerifyAttemptBudget(t *testing.T) {
	service, _, _ := newTestSetup(t)
	ctx := context.Background()

	_, err := service.Issue(ctx, "jane@example.com", PurposeEmail)
	require.NoError(t, err)

	// every guess inside the budget fails uniformly
	for i := 0; i < DefaultMaxAttempts; i++ {
		err = service.Verify(ctx, "jane@example.com", PurposeEmail, "000000")
		assert.ErrorIs(t, err, ErrCodeInvalidOrExpired)
	}

	// the budget is spent: even the correct code is refused now
	err = service.Verify(ctx, "jane@example.com", PurposeEmail, "123456")
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	// the exhausted record no longer counts as active
	err = service.Verify(ctx, "jane@example.com", PurposeEmail, "123456")
	assert.ErrorIs(t, err, ErrCodeInvalidOrExpired)
}

func TestVerifyExpiredCode(t *testing.T) {
	service, _, _ := newTestSetup(t, WithTTL(-time.Second))
	ctx := context.Background()

	_, err := service.Issue(ctx, "jane@example.com", PurposeEmail)
	require.NoError(t, err)

	err = service.Verify(ctx, "jane@example.com", PurposeEmail, "123456")
	assert.ErrorIs(t, err, ErrCodeInvalidOrExpired)
}

func TestVerifyWithoutRecord(t *testing.T) {
	service, _, _ := newTestSetup(t)

	err := service.Verify(context.Background(), "nobody@example.com", PurposeEmail, "123456")
	assert.ErrorIs(t, err, ErrCodeInvalidOrExpired)
}

func TestAssignCode(t *testing.T) {
	repo := NewInMemRepository()
	service := NewService(repo, gateway.NewMockGateway(), nil)
	ctx := context.Background()

	rec, err := repo.InvalidateAndCreate(ctx, Record{
		ID:        uuid.New(),
		Address:   "jane@example.com",
		Purpose:   PurposeEmail,
		Status:    StatusPending,
		ExpiresAt: time.Now().UTC().Add(DefaultTTL),
	})
	require.NoError(t, err)

	err = service.AssignCode(ctx, rec.ID, "12345")
	assert.ErrorIs(t, err, ErrInvalidCode)

	err = service.AssignCode(ctx, rec.ID, "abcdef")
	assert.ErrorIs(t, err, ErrInvalidCode)

	err = service.AssignCode(ctx, rec.ID, "123456")
	require.NoError(t, err)

	// a record only ever takes one code
	err = service.AssignCode(ctx, rec.ID, "654321")
	assert.ErrorIs(t, err, ErrRecordFinalized)

	err = service.AssignCode(ctx, uuid.New(), "123456")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestConcurrentIssueSingleActiveRecord(t *testing.T) {
	repo := NewInMemRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.InvalidateAndCreate(ctx, Record{
				ID:        uuid.New(),
				Address:   "jane@example.com",
				Purpose:   PurposeEmail,
				Status:    StatusPending,
				ExpiresAt: time.Now().UTC().Add(DefaultTTL),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	active := 0
	for _, rec := range repo.records {
		if rec.Active() {
			active++
		}
	}
	assert.Equal(t, 1, active, "exactly one record per address and purpose may stay active")
}
