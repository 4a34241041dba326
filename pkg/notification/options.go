package notification

import (
	"embed"
	"log/slog"
)

//go:embed templates/*
var templateFiles embed.FS

func loadTemplate(filename string) string {
	content, err := templateFiles.ReadFile(filename)
	if err != nil {
		slog.Error("Error reading template file!", "err", err, "filename", filename)
		return ""
	}
	return string(content)
}

// NotificationManagerOption is a function that configures a NotificationManager
type NotificationManagerOption func(*NotificationManager) error

// WithSMTP adds an email notifier with the provided SMTP configuration
func WithSMTP(config SMTPConfig) NotificationManagerOption {
	return func(nm *NotificationManager) error {
		emailNotifier, err := NewEmailNotifier(config)
		if err != nil {
			return err
		}
		nm.RegisterNotifier(EmailSystem, emailNotifier)
		return nil
	}
}

// WithSMTPFailover adds an email delivery chain: the primary SMTP transport
// plus any number of fallback transports, tried in order.
func WithSMTPFailover(primary SMTPConfig, fallbacks ...SMTPConfig) NotificationManagerOption {
	return func(nm *NotificationManager) error {
		chain := NewFailoverNotifier()

		primaryNotifier, err := NewEmailNotifier(primary)
		if err != nil {
			return err
		}
		chain.Append(primaryNotifier)

		for _, config := range fallbacks {
			fallbackNotifier, err := NewEmailNotifier(config)
			if err != nil {
				return err
			}
			chain.Append(fallbackNotifier)
		}

		nm.RegisterNotifier(EmailSystem, chain)
		return nil
	}
}

// WithTwilio adds an SMS notifier with the provided Twilio configuration
func WithTwilio(config TwilioConfig) NotificationManagerOption {
	return func(nm *NotificationManager) error {
		smsNotifier := NewSMSNotifier(config)
		nm.RegisterNotifier(SMSSystem, smsNotifier)
		return nil
	}
}

// WithEmailVerificationTemplate registers the email verification code template
func WithEmailVerificationTemplate() NotificationManagerOption {
	return func(nm *NotificationManager) error {
		return nm.RegisterNotification(EmailVerificationNotice, EmailSystem, NoticeTemplate{
			Subject: "Verify Your Email Address",
			Html:    loadTemplate("templates/email/verification_code.html"),
			Text:    "Your verification code is: {{.Code}}. It expires at {{.ExpiresAt}}.",
		})
	}
}

// WithMobileVerificationTemplate registers the mobile verification SMS template
func WithMobileVerificationTemplate() NotificationManagerOption {
	return func(nm *NotificationManager) error {
		return nm.RegisterNotification(MobileVerificationNotice, SMSSystem, NoticeTemplate{
			Subject: "Mobile Verification",
			Text:    "Your verification code is: {{.Code}}",
		})
	}
}

// WithPasswordResetTemplate registers the password reset code template
func WithPasswordResetTemplate() NotificationManagerOption {
	return func(nm *NotificationManager) error {
		return nm.RegisterNotification(PasswordResetNotice, EmailSystem, NoticeTemplate{
			Subject: "Password Reset Request",
			Html:    loadTemplate("templates/email/password_reset_code.html"),
			Text:    "Your password reset code is: {{.Code}}. It expires at {{.ExpiresAt}}.",
		})
	}
}

// WithUsernameRecoveryTemplate registers the username recovery code template
func WithUsernameRecoveryTemplate() NotificationManagerOption {
	return func(nm *NotificationManager) error {
		return nm.RegisterNotification(UsernameRecoveryNotice, EmailSystem, NoticeTemplate{
			Subject: "Username Recovery Request",
			Html:    loadTemplate("templates/email/username_recovery_code.html"),
			Text:    "Your username recovery code is: {{.Code}}. It expires at {{.ExpiresAt}}.",
		})
	}
}

// WithDefaultTemplates registers all default notification templates
func WithDefaultTemplates() NotificationManagerOption {
	return func(nm *NotificationManager) error {
		options := []NotificationManagerOption{
			WithEmailVerificationTemplate(),
			WithMobileVerificationTemplate(),
			WithPasswordResetTemplate(),
			WithUsernameRecoveryTemplate(),
		}

		for _, opt := range options {
			if err := opt(nm); err != nil {
				return err
			}
		}

		return nil
	}
}

// NewNotificationManagerWithOptions creates a new notification manager with the provided options
func NewNotificationManagerWithOptions(opts ...NotificationManagerOption) (*NotificationManager, error) {
	notificationManager := NewNotificationManager()

	for _, opt := range opts {
		if err := opt(notificationManager); err != nil {
			return nil, err
		}
	}

	return notificationManager, nil
}
