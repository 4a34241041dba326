package config

import "time"

// JWTConfig holds session token configuration
type JWTConfig struct {
	Secret             string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	SessionTokenExpiry string `env:"SESSION_TOKEN_EXPIRY" env-default:"24h"`
	Issuer             string `env:"JWT_ISSUER" env-default:"simple-account"`
	Audience           string `env:"JWT_AUDIENCE" env-default:"simple-account"`
}

// ParseSessionTokenExpiry parses the session token expiry duration
func (j JWTConfig) ParseSessionTokenExpiry() (time.Duration, error) {
	return time.ParseDuration(j.SessionTokenExpiry)
}
