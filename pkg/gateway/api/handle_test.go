package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-account/pkg/account"
	"github.com/tendant/simple-account/pkg/gateway"
	"github.com/tendant/simple-account/pkg/reset"
	"github.com/tendant/simple-account/pkg/verification"
)

func newTestHandler(t *testing.T) (*Handler, *verification.InMemRepository, *reset.InMemRepository) {
	t.Helper()

	// gateway without a code: records stay pending until the relay calls back
	gw := gateway.NewMockGateway()
	accounts := account.NewInMemRepository()

	verifRepo := verification.NewInMemRepository()
	resetRepo := reset.NewInMemRepository()
	verifications := verification.NewService(verifRepo, gw, accounts)
	resets := reset.NewService(resetRepo, gw, accounts)

	return NewHandler(verifications, resets), verifRepo, resetRepo
}

func postSetCode(t *testing.T, h *Handler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/set-code", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestSetCodeVerificationRecord(t *testing.T) {
	h, verifRepo, _ := newTestHandler(t)

	created, err := verifRepo.InvalidateAndCreate(context.Background(), verification.Record{
		ID:        uuid.New(),
		Address:   "jane@example.com",
		Purpose:   verification.PurposeEmail,
		Status:    verification.StatusPending,
		ExpiresAt: time.Now().UTC().Add(5 * time.Minute),
	})
	require.NoError(t, err)

	rec := postSetCode(t, h, SetCodeRequest{RecordID: created.ID.String(), Code: "123456"})
	assert.Equal(t, http.StatusOK, rec.Code)

	stored, err := verifRepo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, verification.StatusCodeAssigned, stored.Status)
	assert.Equal(t, "123456", stored.Code)
}

func TestSetCodeResetRecord(t *testing.T) {
	h, _, resetRepo := newTestHandler(t)

	created, err := resetRepo.InvalidateAndCreate(context.Background(), reset.Record{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Email:     "jane@example.com",
		Type:      reset.TypePassword,
		Token:     "token",
		Status:    reset.StatusPending,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	})
	require.NoError(t, err)

	rec := postSetCode(t, h, SetCodeRequest{RecordID: created.ID.String(), Code: "654321"})
	assert.Equal(t, http.StatusOK, rec.Code)

	stored, err := resetRepo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, reset.StatusCodeAssigned, stored.Status)
}

func TestSetCodeValidation(t *testing.T) {
	h, verifRepo, _ := newTestHandler(t)

	created, err := verifRepo.InvalidateAndCreate(context.Background(), verification.Record{
		ID:        uuid.New(),
		Address:   "jane@example.com",
		Purpose:   verification.PurposeEmail,
		Status:    verification.StatusPending,
		ExpiresAt: time.Now().UTC().Add(5 * time.Minute),
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		body SetCodeRequest
		want int
	}{
		{"missing code", SetCodeRequest{RecordID: created.ID.String()}, http.StatusBadRequest},
		{"bad record id", SetCodeRequest{RecordID: "nope", Code: "123456"}, http.StatusBadRequest},
		{"non numeric code", SetCodeRequest{RecordID: created.ID.String(), Code: "abcdef"}, http.StatusBadRequest},
		{"unknown record", SetCodeRequest{RecordID: uuid.New().String(), Code: "123456"}, http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postSetCode(t, h, tc.body)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestSetCodeTwiceFails(t *testing.T) {
	h, verifRepo, _ := newTestHandler(t)

	created, err := verifRepo.InvalidateAndCreate(context.Background(), verification.Record{
		ID:        uuid.New(),
		Address:   "jane@example.com",
		Purpose:   verification.PurposeEmail,
		Status:    verification.StatusPending,
		ExpiresAt: time.Now().UTC().Add(5 * time.Minute),
	})
	require.NoError(t, err)

	rec := postSetCode(t, h, SetCodeRequest{RecordID: created.ID.String(), Code: "123456"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postSetCode(t, h, SetCodeRequest{RecordID: created.ID.String(), Code: "999999"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
