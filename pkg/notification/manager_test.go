package notification

import (
	"errors"
	"testing"
)

func TestNewNotificationManager(t *testing.T) {
	nm := NewNotificationManager()
	if nm == nil {
		t.Error("NewNotificationManager returned nil")
	}
	if nm.notifiers == nil {
		t.Error("notifiers map not initialized")
	}
	if nm.notificationRegistry == nil {
		t.Error("notificationRegistry map not initialized")
	}
}

func TestRegisterNotifier(t *testing.T) {
	nm := NewNotificationManager()
	mockNotifier := &MockNotifier{}

	nm.RegisterNotifier(EmailSystem, mockNotifier)
	if n, exists := nm.notifiers[EmailSystem]; !exists {
		t.Error("Notifier not registered")
	} else if n != mockNotifier {
		t.Error("Wrong notifier registered")
	}

	// Overwriting an existing notifier
	newMockNotifier := &MockNotifier{}
	nm.RegisterNotifier(EmailSystem, newMockNotifier)
	if n := nm.notifiers[EmailSystem]; n != newMockNotifier {
		t.Error("Notifier not overwritten")
	}
}

func TestRegisterNotification(t *testing.T) {
	nm := NewNotificationManager()

	tests := []struct {
		name        string
		notifType   NoticeType
		system      NotificationSystem
		template    NoticeTemplate
		shouldError bool
	}{
		{
			name:        "Valid registration with both Text and Html",
			notifType:   ExampleNotice,
			system:      EmailSystem,
			template:    NoticeTemplate{Subject: "Example Email", Text: "This is an example email", Html: "<p>This is an example email</p>"},
			shouldError: false,
		},
		{
			name:        "Valid registration with Text only",
			notifType:   ExampleNotice,
			system:      SMSSystem,
			template:    NoticeTemplate{Text: "This is an example sms"},
			shouldError: false,
		},
		{
			name:        "Empty notification type",
			notifType:   "",
			system:      EmailSystem,
			template:    NoticeTemplate{Subject: "Example Email", Text: "This is an example email"},
			shouldError: true,
		},
		{
			name:        "Empty system",
			notifType:   ExampleNotice,
			system:      "",
			template:    NoticeTemplate{Subject: "Example Email", Text: "This is an example email"},
			shouldError: true,
		},
		{
			name:        "Empty template",
			notifType:   ExampleNotice,
			system:      EmailSystem,
			template:    NoticeTemplate{Subject: "Example Email"},
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := nm.RegisterNotification(tt.notifType, tt.system, tt.template)
			if tt.shouldError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.shouldError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSend(t *testing.T) {
	nm := NewNotificationManager()
	mockNotifier := &MockNotifier{}
	nm.RegisterNotifier(EmailSystem, mockNotifier)

	err := nm.RegisterNotification(ExampleNotice, EmailSystem, NoticeTemplate{
		Subject: "Example",
		Text:    "Code: {{.Code}}",
	})
	if err != nil {
		t.Fatalf("RegisterNotification failed: %v", err)
	}

	data := NotificationData{To: "user@example.com", Data: map[string]string{"Code": "123456"}}
	if err := nm.Send(ExampleNotice, EmailSystem, data); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(mockNotifier.SentNotifications) != 1 {
		t.Fatalf("expected 1 sent notification, got %d", len(mockNotifier.SentNotifications))
	}
	if mockNotifier.SentNotifications[0].To != "user@example.com" {
		t.Errorf("unexpected recipient: %s", mockNotifier.SentNotifications[0].To)
	}

	// Unregistered type
	if err := nm.Send("missing", EmailSystem, data); err == nil {
		t.Error("expected error for unregistered notification type")
	}

	// Unregistered system
	if err := nm.Send(ExampleNotice, SMSSystem, data); err == nil {
		t.Error("expected error for unregistered system")
	}
}

func TestFailoverNotifier(t *testing.T) {
	failing := &MockNotifier{Err: errors.New("smtp unreachable")}
	working := &MockNotifier{}

	chain := NewFailoverNotifier(failing, working)
	data := NotificationData{To: "user@example.com"}
	template := NoticeTemplate{Subject: "t", Text: "body"}

	if err := chain.Send(ExampleNotice, data, template); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(working.SentNotifications) != 1 {
		t.Errorf("expected fallback notifier to deliver, got %d", len(working.SentNotifications))
	}

	// All notifiers failing surfaces a single error
	allFailing := NewFailoverNotifier(
		&MockNotifier{Err: errors.New("first down")},
		&MockNotifier{Err: errors.New("second down")},
	)
	if err := allFailing.Send(ExampleNotice, data, template); err == nil {
		t.Error("expected error when all notifiers fail")
	}

	// Empty chain
	empty := NewFailoverNotifier()
	if err := empty.Send(ExampleNotice, data, template); err == nil {
		t.Error("expected error for empty chain")
	}
}
