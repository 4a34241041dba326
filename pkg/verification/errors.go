package verification

import "errors"

var (
	// ErrRecordNotFound is returned when no record matches the lookup
	ErrRecordNotFound = errors.New("verification record not found")

	// ErrRecordFinalized is returned when assigning a code to a record that
	// already left the pending state
	ErrRecordFinalized = errors.New("verification record already finalized")

	// ErrInvalidCode is returned when an assigned code fails format validation
	ErrInvalidCode = errors.New("code must be exactly six digits")

	// ErrCodeInvalidOrExpired is the uniform verification failure: wrong code,
	// no live record, or the validity window has passed
	ErrCodeInvalidOrExpired = errors.New("invalid or expired verification code")

	// ErrTooManyAttempts is returned once the wrong-guess budget is spent
	ErrTooManyAttempts = errors.New("too many verification attempts")

	// ErrDeliveryFailed is returned when the code could not be sent; the
	// record has been rolled back
	ErrDeliveryFailed = errors.New("failed to deliver verification code")
)
