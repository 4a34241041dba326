package account

import (
	"time"

	"github.com/google/uuid"
)

// Registration steps, in order. Each step handler requires the previous step
// to have completed exactly once.
const (
	StepPersonalInfo = 1
	StepCredentials  = 2
	StepProfile      = 3
)

// SupportedCurrencies is the closed list of bankroll currencies accepted at
// registration step 3.
var SupportedCurrencies = []string{"USD", "EUR", "GBP", "BTC", "ETH", "USDT", "BNB", "ADA", "SOL", "DOT"}

// IsSupportedCurrency reports whether currency is in SupportedCurrencies.
func IsSupportedCurrency(currency string) bool {
	for _, c := range SupportedCurrencies {
		if c == currency {
			return true
		}
	}
	return false
}

// Account is a user identity progressing through onboarding.
type Account struct {
	ID uuid.UUID `json:"id"`

	// Step 1 - personal information
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	CountryOfResidence string    `json:"country_of_residence"`
	Nationality        string    `json:"nationality"`
	Email              string    `json:"email"`
	EmailVerified      bool      `json:"email_verified"`
	DateOfBirth        time.Time `json:"date_of_birth"`
	IsOver18           bool      `json:"is_over_18"`
	AcceptedTerms      bool      `json:"accepted_terms"`

	// Step 2 - credentials
	Username           string `json:"username"`
	PasswordHash       string `json:"-"`
	SecurityQuestion   string `json:"security_question"`
	SecurityAnswerHash string `json:"-"`

	// Step 3 - address and additional info
	Street           string `json:"street"`
	HouseNumber      string `json:"house_number"`
	City             string `json:"city"`
	PostalCode       string `json:"postal_code"`
	MobileNumber     string `json:"mobile_number"`
	MobileVerified   bool   `json:"mobile_verified"`
	BankrollCurrency string `json:"bankroll_currency"`

	// Account status
	IsActive              bool       `json:"is_active"`
	LastLoginAt           *time.Time `json:"last_login_at,omitempty"`
	RegistrationStep      int        `json:"registration_step"`
	RegistrationCompleted bool       `json:"registration_completed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
