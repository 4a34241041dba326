// Package notification provides a unified interface for sending notifications via multiple channels.
//
// The package defines the Notifier interface and provides implementations for email (SMTP via
// wneessen/go-mail), SMS (Twilio), a FailoverNotifier that chains transports in order, and a
// MockNotifier for tests. The NotificationManager pairs notifiers with registered templates so
// callers only name a NoticeType and a channel:
//
//	nm, err := notification.NewNotificationManagerWithOptions(
//	    notification.WithSMTPFailover(primarySMTP, fallbackSMTP),
//	    notification.WithTwilio(twilioConfig),
//	    notification.WithDefaultTemplates(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = nm.Send(notification.EmailVerificationNotice, notification.EmailSystem, notification.NotificationData{
//	    To:   "user@example.com",
//	    Data: map[string]string{"Code": "123456"},
//	})
//
// Templates use Go's html/template syntax and live under templates/, embedded at build time.
// When both Text and Html are provided, the email is sent as multipart with a plain-text
// alternative.
package notification
