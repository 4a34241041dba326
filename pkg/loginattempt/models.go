// Package loginattempt keeps an append-only audit ledger of authentication
// attempts. Writes are best effort: a failed ledger insert is logged and
// swallowed so it never blocks the login it describes.
package loginattempt

import (
	"time"

	"github.com/google/uuid"
)

// FailureReason is the closed set of recorded login failure causes.
type FailureReason string

const (
	ReasonNone             FailureReason = "none"
	ReasonInvalidUsername  FailureReason = "invalid_username"
	ReasonInvalidPassword  FailureReason = "invalid_password"
	ReasonAccountLocked    FailureReason = "account_locked"
	ReasonAccountInactive  FailureReason = "account_inactive"
	ReasonEmailNotVerified FailureReason = "email_not_verified"
	// ReasonMobileNotVerified is stored but no login rule produces it yet.
	ReasonMobileNotVerified FailureReason = "mobile_not_verified"
)

// Attempt is one ledger entry. AccountID is nil when the identifier did not
// resolve to an account.
type Attempt struct {
	ID        uuid.UUID     `json:"id"`
	Username  string        `json:"username"`
	AccountID *uuid.UUID    `json:"account_id,omitempty"`
	IP        string        `json:"ip"`
	UserAgent string        `json:"user_agent"`
	Success   bool          `json:"success"`
	Reason    FailureReason `json:"failure_reason"`
	CreatedAt time.Time     `json:"created_at"`
}
