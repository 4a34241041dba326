package account

import "errors"

var (
	// ErrAccountNotFound is returned when no account matches the lookup
	ErrAccountNotFound = errors.New("account not found")

	// ErrEmailTaken is returned when the email already owns an account
	ErrEmailTaken = errors.New("user with this email already exists")

	// ErrUsernameTaken is returned when the username is already in use
	ErrUsernameTaken = errors.New("username already taken")

	// ErrMobileTaken is returned when the mobile number is already registered
	ErrMobileTaken = errors.New("mobile number already registered")

	// ErrAgeNotConfirmed is returned when the over-18 confirmation is missing
	ErrAgeNotConfirmed = errors.New("you must be over 18 to register")

	// ErrTermsNotAccepted is returned when the terms were not accepted
	ErrTermsNotAccepted = errors.New("you must accept the terms and conditions")

	// ErrInvalidRegistrationStep is returned when a step handler is called out of order
	ErrInvalidRegistrationStep = errors.New("invalid user or registration step")

	// ErrInvalidUsername is returned when the username fails format validation
	ErrInvalidUsername = errors.New("username must be 3-30 alphanumeric characters")

	// ErrPasswordTooShort is returned when the password is under the minimum length
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")

	// ErrUnsupportedCurrency is returned when the bankroll currency is not in the closed list
	ErrUnsupportedCurrency = errors.New("unsupported bankroll currency")
)
