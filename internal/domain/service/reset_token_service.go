package service

import (
	"time"

	"github.com/google/uuid"
)

// ResetClaims are the facts carried inside a signed password-reset token.
type ResetClaims struct {
	RequestID uuid.UUID
	AccountID uuid.UUID
	Email     string
	ExpiresAt time.Time
}

// ResetTokenService issues and verifies signed password-reset tokens.
type ResetTokenService interface {
	// Issue signs a token for the claims and returns it with its storage hash.
	Issue(claims ResetClaims) (token string, tokenHash string, err error)

	// Parse verifies signature and expiry and returns the embedded claims.
	Parse(token string) (*ResetClaims, error)

	// Hash returns the storage hash of a raw token.
	Hash(token string) string

	// TTL is the lifetime of newly issued tokens.
	TTL() time.Duration
}
