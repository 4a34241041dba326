package reset

import "errors"

var (
	// ErrRecordNotFound is returned when no record matches the lookup
	ErrRecordNotFound = errors.New("reset record not found")

	// ErrRecordFinalized is returned when assigning a code to a record that
	// already left the pending state
	ErrRecordFinalized = errors.New("reset record already finalized")

	// ErrInvalidCode is returned when an assigned code fails format validation
	ErrInvalidCode = errors.New("code must be exactly six digits")

	// ErrCodeInvalidOrExpired is the uniform challenge failure: wrong code,
	// no live record, or the validity window has passed
	ErrCodeInvalidOrExpired = errors.New("invalid or expired reset code")

	// ErrTooManyAttempts is returned once the wrong-guess budget is spent
	ErrTooManyAttempts = errors.New("too many reset attempts")

	// ErrTokenInvalidOrExpired is the uniform consumption failure: unknown,
	// already used, expired or wrong-type token
	ErrTokenInvalidOrExpired = errors.New("invalid or expired reset token")

	// ErrDeliveryFailed is returned when the code could not be sent; the
	// record has been rolled back
	ErrDeliveryFailed = errors.New("failed to deliver reset code")
)
