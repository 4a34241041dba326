package gateway

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-account/pkg/notification"
)

type recordingSink struct {
	recordID uuid.UUID
	code     string
	err      error
}

func (s *recordingSink) AssignCode(ctx context.Context, recordID uuid.UUID, code string) error {
	if s.err != nil {
		return s.err
	}
	s.recordID = recordID
	s.code = code
	return nil
}

func TestGeneratePasscode(t *testing.T) {
	codePattern := regexp.MustCompile(`^\d{6}$`)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		code, err := GeneratePasscode()
		require.NoError(t, err)
		assert.Regexp(t, codePattern, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1, "codes from distinct secrets should not all collide")
}

func newTestManager(t *testing.T, notifier notification.Notifier) *notification.NotificationManager {
	t.Helper()
	nm := notification.NewNotificationManager()
	nm.RegisterNotifier(notification.EmailSystem, notifier)
	err := nm.RegisterNotification(notification.EmailVerificationNotice, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "Verify Your Email Address",
		Text:    "Your verification code is: {{.Code}}",
	})
	require.NoError(t, err)
	return nm
}

func TestNotifyingGatewayDeliver(t *testing.T) {
	mockNotifier := &notification.MockNotifier{}
	gw := NewNotifyingGateway(newTestManager(t, mockNotifier), WithDeliveryTimeout(5*time.Second))

	sink := &recordingSink{}
	gw.RegisterSink(notification.EmailVerificationNotice, sink)

	delivery := Delivery{
		RecordID:  uuid.New(),
		Recipient: "a@b.com",
		Channel:   ChannelEmail,
		Notice:    notification.EmailVerificationNotice,
		ExpiresAt: time.Now().UTC().Add(5 * time.Minute),
	}

	err := gw.Deliver(context.Background(), delivery)
	require.NoError(t, err)

	assert.Equal(t, delivery.RecordID, sink.recordID)
	assert.Regexp(t, `^\d{6}$`, sink.code)

	require.Len(t, mockNotifier.SentNotifications, 1)
	assert.Equal(t, "a@b.com", mockNotifier.SentNotifications[0].To)
	assert.Equal(t, sink.code, mockNotifier.SentNotifications[0].Data["Code"])
}

func TestNotifyingGatewayDeliverNoSink(t *testing.T) {
	gw := NewNotifyingGateway(newTestManager(t, &notification.MockNotifier{}))

	err := gw.Deliver(context.Background(), Delivery{
		RecordID: uuid.New(),
		Notice:   notification.EmailVerificationNotice,
	})
	assert.Error(t, err)
}

func TestNotifyingGatewayDeliverSendFailure(t *testing.T) {
	mockNotifier := &notification.MockNotifier{Err: errors.New("smtp unreachable")}
	gw := NewNotifyingGateway(newTestManager(t, mockNotifier))

	sink := &recordingSink{}
	gw.RegisterSink(notification.EmailVerificationNotice, sink)

	err := gw.Deliver(context.Background(), Delivery{
		RecordID:  uuid.New(),
		Recipient: "a@b.com",
		Channel:   ChannelEmail,
		Notice:    notification.EmailVerificationNotice,
		ExpiresAt: time.Now().UTC().Add(5 * time.Minute),
	})
	assert.Error(t, err, "send failure must surface so the caller can compensate")
}
