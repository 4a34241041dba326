package config

import "github.com/tendant/simple-account/pkg/notification"

// EmailConfig holds SMTP email configuration. The fallback host is optional;
// when set, deliveries that fail on the primary are retried there.
type EmailConfig struct {
	Host     string `env:"EMAIL_HOST" env-default:"localhost"`
	Port     uint16 `env:"EMAIL_PORT" env-default:"1025"`
	Username string `env:"EMAIL_USERNAME" env-default:"noreply@example.com"`
	Password string `env:"EMAIL_PASSWORD" env-default:"pwd"`
	From     string `env:"EMAIL_FROM" env-default:"noreply@example.com"`
	TLS      bool   `env:"EMAIL_TLS" env-default:"false"`

	FallbackHost     string `env:"EMAIL_FALLBACK_HOST"`
	FallbackPort     uint16 `env:"EMAIL_FALLBACK_PORT" env-default:"587"`
	FallbackUsername string `env:"EMAIL_FALLBACK_USERNAME"`
	FallbackPassword string `env:"EMAIL_FALLBACK_PASSWORD"`
	FallbackTLS      bool   `env:"EMAIL_FALLBACK_TLS" env-default:"true"`
}

// ToSMTPConfig converts the config to a notification.SMTPConfig
func (e EmailConfig) ToSMTPConfig() notification.SMTPConfig {
	return notification.SMTPConfig{
		Host:     e.Host,
		Port:     int(e.Port),
		Username: e.Username,
		Password: e.Password,
		From:     e.From,
		TLS:      e.TLS,
	}
}

// HasFallback reports whether a fallback SMTP host is configured
func (e EmailConfig) HasFallback() bool {
	return e.FallbackHost != ""
}

// ToFallbackSMTPConfig converts the fallback settings to a notification.SMTPConfig
func (e EmailConfig) ToFallbackSMTPConfig() notification.SMTPConfig {
	return notification.SMTPConfig{
		Host:     e.FallbackHost,
		Port:     int(e.FallbackPort),
		Username: e.FallbackUsername,
		Password: e.FallbackPassword,
		From:     e.From,
		TLS:      e.FallbackTLS,
	}
}

// TwilioConfig holds Twilio SMS configuration
type TwilioConfig struct {
	TwilioAccountSid string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	TwilioFrom       string `env:"TWILIO_FROM"`
}

// ToNotificationTwilioConfig converts the config to a notification.TwilioConfig
func (t TwilioConfig) ToNotificationTwilioConfig() notification.TwilioConfig {
	return notification.TwilioConfig{
		TwilioAccountSid: t.TwilioAccountSid,
		TwilioAuthToken:  t.TwilioAuthToken,
		TwilioFrom:       t.TwilioFrom,
	}
}

// IsConfigured returns true if Twilio is configured
func (t TwilioConfig) IsConfigured() bool {
	return t.TwilioAccountSid != "" && t.TwilioAuthToken != "" && t.TwilioFrom != ""
}
