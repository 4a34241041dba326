package verification

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a verification record
type Status string

const (
	// StatusPending means the record exists but no code has been assigned yet
	StatusPending Status = "pending"
	// StatusCodeAssigned means a code is attached and the record accepts guesses
	StatusCodeAssigned Status = "code_assigned"
	// StatusVerified is terminal: the correct code was presented in time
	StatusVerified Status = "verified"
	// StatusExhausted is terminal: superseded, expired or too many wrong guesses
	StatusExhausted Status = "exhausted"
)

// Purpose says which kind of address the record verifies
type Purpose string

const (
	PurposeEmail  Purpose = "email"
	PurposeMobile Purpose = "mobile"
)

// Record is one verification attempt for an address.
type Record struct {
	ID        uuid.UUID `json:"id"`
	Address   string    `json:"address"`
	Purpose   Purpose   `json:"purpose"`
	Code      string    `json:"-"`
	Status    Status    `json:"status"`
	Attempts  int       `json:"attempts"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the record can still accept a code or a guess
func (r Record) Active() bool {
	return r.Status == StatusPending || r.Status == StatusCodeAssigned
}

// Expired reports whether the record's validity window has passed
func (r Record) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
