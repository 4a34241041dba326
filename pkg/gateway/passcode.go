package gateway

import (
	"log/slog"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/xlzd/gotp"
)

const (
	SKEW   = 1
	PERIOD = 300
)

// GeneratePasscode produces a 6-digit numeric code from a fresh random secret.
// Each delivery gets its own secret, so the code is single-use by construction;
// validity is tracked on the record, not by re-deriving the code.
func GeneratePasscode() (string, error) {
	secret := gotp.RandomSecret(16)
	code, err := totp.GenerateCodeCustom(secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    PERIOD,
		Skew:      SKEW,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		slog.Error("Failed to generate passcode", "error", err)
		return "", err
	}
	return code, nil
}
