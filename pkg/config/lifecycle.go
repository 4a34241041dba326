package config

import "time"

// LifecycleConfig holds the code and token lifecycle windows
type LifecycleConfig struct {
	VerificationTTL    string  `env:"VERIFICATION_TTL" env-default:"300s"`
	ResetTTL           string  `env:"RESET_TTL" env-default:"3600s"`
	MaxAttempts        int     `env:"MAX_CODE_ATTEMPTS" env-default:"5"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" env-default:"10"`
	RateLimitPerMinute float64 `env:"RATE_LIMIT_PER_MINUTE" env-default:"10"`
}

// ParseVerificationTTL parses the verification code validity window
func (l LifecycleConfig) ParseVerificationTTL() (time.Duration, error) {
	return time.ParseDuration(l.VerificationTTL)
}

// ParseResetTTL parses the reset challenge validity window
func (l LifecycleConfig) ParseResetTTL() (time.Duration, error) {
	return time.ParseDuration(l.ResetTTL)
}
