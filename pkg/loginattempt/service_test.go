package loginattempt

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepository struct{}

func (failingRepository) Insert(ctx context.Context, attempt Attempt) error {
	return errors.New("insert failed")
}

func (failingRepository) ListByUsername(ctx context.Context, username string, limit int) ([]Attempt, error) {
	return nil, nil
}

func TestRecord(t *testing.T) {
	repo := NewInMemRepository()
	service := NewService(repo)
	ctx := context.Background()

	accountID := uuid.New()
	service.Record(ctx, RecordParams{
		Username:  "janedoe",
		AccountID: &accountID,
		IP:        "192.0.2.1",
		UserAgent: "test-agent",
		Success:   true,
	})
	service.Record(ctx, RecordParams{
		Username: "janedoe",
		Success:  false,
		Reason:   ReasonInvalidPassword,
	})

	attempts, err := service.List(ctx, "janedoe", 10)
	require.NoError(t, err)
	require.Len(t, attempts, 2)

	// newest first
	assert.False(t, attempts[0].Success)
	assert.Equal(t, ReasonInvalidPassword, attempts[0].Reason)
	assert.True(t, attempts[1].Success)
	assert.Equal(t, ReasonNone, attempts[1].Reason)
	assert.Equal(t, &accountID, attempts[1].AccountID)
}

func TestRecordSwallowsInsertFailure(t *testing.T) {
	service := NewService(failingRepository{})

	// must not panic or surface the error
	service.Record(context.Background(), RecordParams{
		Username: "janedoe",
		Success:  false,
		Reason:   ReasonInvalidUsername,
	})
}
