package account

// PersonalInfoRequest is the step 1 request body
type PersonalInfoRequest struct {
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	CountryOfResidence string `json:"countryOfResidence"`
	Nationality        string `json:"nationality"`
	Email              string `json:"email"`
	DateOfBirth        string `json:"dateOfBirth"`
	IsOver18           bool   `json:"isOver18"`
	AcceptedTerms      bool   `json:"acceptedTerms"`
}

// CredentialsRequest is the step 2 request body
type CredentialsRequest struct {
	UserID           string `json:"userId"`
	Username         string `json:"username"`
	Password         string `json:"password"`
	SecurityQuestion string `json:"securityQuestion"`
	SecurityAnswer   string `json:"securityAnswer"`
}

// ProfileRequest is the step 3 request body
type ProfileRequest struct {
	UserID           string `json:"userId"`
	Street           string `json:"street"`
	HouseNumber      string `json:"houseNumber"`
	City             string `json:"city"`
	PostalCode       string `json:"postalCode"`
	MobileNumber     string `json:"mobileNumber"`
	BankrollCurrency string `json:"bankrollCurrency"`
}

// CheckUsernameRequest is the username availability request body
type CheckUsernameRequest struct {
	Username string `json:"username"`
}

// UpdateProfileRequest carries optional profile updates
type UpdateProfileRequest struct {
	Street           *string `json:"street,omitempty"`
	HouseNumber      *string `json:"houseNumber,omitempty"`
	City             *string `json:"city,omitempty"`
	PostalCode       *string `json:"postalCode,omitempty"`
	BankrollCurrency *string `json:"bankrollCurrency,omitempty"`
}

// StepResponse reports the registration step just completed
type StepResponse struct {
	UserID    string `json:"userId"`
	Step      int    `json:"step"`
	Completed bool   `json:"completed,omitempty"`
}

// CheckUsernameResponse reports username availability
type CheckUsernameResponse struct {
	Available bool `json:"available"`
}

// ErrorResponse is the error payload for all account endpoints
type ErrorResponse struct {
	Error string `json:"error"`
}
