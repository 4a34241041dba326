package reset

import (
	"time"

	"github.com/google/uuid"
)

// Type says which recovery action the record enables
type Type string

const (
	TypePassword Type = "password"
	TypeUsername Type = "username"
)

// Status is the lifecycle state of a reset record
type Status string

const (
	// StatusPending means the record exists but no code has been assigned yet
	StatusPending Status = "pending"
	// StatusCodeAssigned means a code is attached and the record accepts guesses
	StatusCodeAssigned Status = "code_assigned"
	// StatusVerified means the code challenge succeeded and the token is usable
	StatusVerified Status = "verified"
	// StatusConsumed is terminal: the token performed its single action
	StatusConsumed Status = "consumed"
	// StatusExhausted is terminal: superseded, expired or too many wrong guesses
	StatusExhausted Status = "exhausted"
)

// Record is one recovery challenge for an email address.
type Record struct {
	ID        uuid.UUID  `json:"id"`
	AccountID uuid.UUID  `json:"account_id"`
	Email     string     `json:"email"`
	Type      Type       `json:"type"`
	Code      string     `json:"-"`
	Token     string     `json:"-"`
	Status    Status     `json:"status"`
	Attempts  int        `json:"attempts"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Active reports whether the record is still usable in some way
func (r Record) Active() bool {
	return r.Status == StatusPending || r.Status == StatusCodeAssigned || r.Status == StatusVerified
}

// Expired reports whether the record's validity window has passed
func (r Record) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
