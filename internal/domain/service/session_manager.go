package service

import (
	"context"
	"time"

	"folio/internal/domain/entity"

	"github.com/google/uuid"
)

// SessionManager issues, resolves and expires opaque session tokens.
type SessionManager interface {
	// Create starts a session for the account. The returned Session carries the raw token.
	Create(ctx context.Context, accountID uuid.UUID) (*entity.Session, error)

	// Resolve returns the account bound to token, or domainerrors.ErrUnauthenticated.
	Resolve(ctx context.Context, token string) (uuid.UUID, error)

	// Destroy ends the session. Unknown tokens are ignored.
	Destroy(ctx context.Context, token string) error

	// DestroyAccount ends every session of the account and returns how many were removed.
	DestroyAccount(ctx context.Context, accountID uuid.UUID) int

	// Sweep removes sessions expired at now.
	Sweep(now time.Time) int

	// MaxAge is the lifetime given to new sessions.
	MaxAge() time.Duration

	Stats() entity.SessionStats
}
