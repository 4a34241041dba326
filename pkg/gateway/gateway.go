package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-account/pkg/notification"
	"github.com/tendant/simple-account/pkg/utils"
)

// Channel identifies the transport a delivery goes out on.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Delivery describes one code delivery request handed off by a store.
// The code itself is not part of the request; it is generated by the gateway
// and reported back through the store's CodeSink.
type Delivery struct {
	RecordID  uuid.UUID
	Recipient string
	Channel   Channel
	Notice    notification.NoticeType
	ExpiresAt time.Time
}

// Gateway is the outbound side of the code delivery channel.
type Gateway interface {
	Deliver(ctx context.Context, delivery Delivery) error
}

// CodeSink is the inbound side: the store callback that records the code the
// gateway assigned to a pending record.
type CodeSink interface {
	AssignCode(ctx context.Context, recordID uuid.UUID, code string) error
}

// NotifyingGateway delivers codes over a NotificationManager. It generates the
// passcode itself, assigns it to the record first, and only then dials out, so
// a failed send can be compensated by the caller without a code ever having
// left the system.
type NotifyingGateway struct {
	manager *notification.NotificationManager
	sinks   map[notification.NoticeType]CodeSink
	timeout time.Duration
}

// NotifyingGatewayOption configures a NotifyingGateway
type NotifyingGatewayOption func(*NotifyingGateway)

// WithDeliveryTimeout bounds the outbound send of a single delivery
func WithDeliveryTimeout(timeout time.Duration) NotifyingGatewayOption {
	return func(g *NotifyingGateway) {
		g.timeout = timeout
	}
}

func NewNotifyingGateway(manager *notification.NotificationManager, opts ...NotifyingGatewayOption) *NotifyingGateway {
	g := &NotifyingGateway{
		manager: manager,
		sinks:   make(map[notification.NoticeType]CodeSink),
		timeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// RegisterSink routes code report-backs for a notice type to a store.
func (g *NotifyingGateway) RegisterSink(notice notification.NoticeType, sink CodeSink) {
	g.sinks[notice] = sink
}

func (g *NotifyingGateway) Deliver(ctx context.Context, delivery Delivery) error {
	sink, ok := g.sinks[delivery.Notice]
	if !ok {
		return fmt.Errorf("no code sink registered for notice type: %s", delivery.Notice)
	}

	code, err := GeneratePasscode()
	if err != nil {
		return fmt.Errorf("failed to generate passcode: %w", err)
	}

	// Assign before dialing out: if the send fails the caller compensates by
	// deleting the record, and the code never left the system.
	if err := sink.AssignCode(ctx, delivery.RecordID, code); err != nil {
		return fmt.Errorf("failed to assign code to record %s: %w", delivery.RecordID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	system := notification.EmailSystem
	if delivery.Channel == ChannelSMS {
		system = notification.SMSSystem
	}

	data := notification.NotificationData{
		To: delivery.Recipient,
		Data: map[string]string{
			"Code":      code,
			"ExpiresAt": delivery.ExpiresAt.UTC().Format(time.RFC1123),
		},
	}

	done := make(chan error, 1)
	go func() {
		done <- g.manager.Send(delivery.Notice, system, data)
	}()

	select {
	case err := <-done:
		if err != nil {
			slog.Error("Code delivery failed", "record_id", delivery.RecordID, "notice", delivery.Notice, "err", err)
			return err
		}
	case <-ctx.Done():
		slog.Error("Code delivery timed out", "record_id", delivery.RecordID, "notice", delivery.Notice)
		return ctx.Err()
	}

	recipient := utils.MaskEmail(delivery.Recipient)
	if delivery.Channel == ChannelSMS {
		recipient = utils.MaskMobile(delivery.Recipient)
	}
	slog.Info("Code delivered", "record_id", delivery.RecordID, "notice", delivery.Notice, "channel", delivery.Channel, "recipient", recipient)
	return nil
}

// MockGateway records deliveries for tests. When Code is set and a sink is
// registered for the delivery's notice type, the code is assigned immediately.
type MockGateway struct {
	Deliveries []Delivery
	Err        error
	Code       string
	sinks      map[notification.NoticeType]CodeSink
}

func NewMockGateway() *MockGateway {
	return &MockGateway{sinks: make(map[notification.NoticeType]CodeSink)}
}

func (m *MockGateway) RegisterSink(notice notification.NoticeType, sink CodeSink) {
	m.sinks[notice] = sink
}

func (m *MockGateway) Deliver(ctx context.Context, delivery Delivery) error {
	if m.Err != nil {
		return m.Err
	}
	m.Deliveries = append(m.Deliveries, delivery)
	if m.Code != "" {
		if sink, ok := m.sinks[delivery.Notice]; ok {
			return sink.AssignCode(ctx, delivery.RecordID, m.Code)
		}
	}
	return nil
}
