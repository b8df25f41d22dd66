package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a provisioned user of the gateway.
// The API key is an opaque credential; the gateway performs no identity
// management beyond resolving it to an account.
type Account struct {
	ID        uuid.UUID
	Username  string
	APIKey    string
	Role      Role
	Credits   int
	CreatedAt time.Time
}

// IsAdmin reports whether the account may call admin operations.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// HasCredits reports whether the account has at least one credit left.
// The actual debit is a conditional update; this is the fail-fast check
// at the top of the evaluation pipeline.
func (a *Account) HasCredits() bool {
	return a.Credits > 0
}
