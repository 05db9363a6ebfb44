package entity

import (
	"time"

	"github.com/google/uuid"
)

// PasswordResetRequest authorizes exactly one password change within its lifetime.
// Only the SHA-256 hash of the emailed token is stored.
type PasswordResetRequest struct {
	ID         uuid.UUID
	AccountID  uuid.UUID
	Email      string
	TokenHash  string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// Usable reports whether the request can still be redeemed at now.
func (r *PasswordResetRequest) Usable(now time.Time) bool {
	return r.ConsumedAt == nil && now.Before(r.ExpiresAt)
}
