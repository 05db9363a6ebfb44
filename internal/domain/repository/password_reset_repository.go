package repository

import (
	"context"
	"errors"
	"time"

	"folio/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrResetRequestNotFound is returned when no reset request matches the token hash.
var ErrResetRequestNotFound = errors.New("password reset request not found")

// PasswordResetRepository stores issued reset tokens by hash.
type PasswordResetRepository interface {
	// Create persists a newly issued request.
	Create(ctx context.Context, request *entity.PasswordResetRequest) error

	// FindByTokenHash retrieves a request by the SHA-256 hash of its token.
	FindByTokenHash(ctx context.Context, tokenHash string) (*entity.PasswordResetRequest, error)

	// MarkConsumed sets consumed_at if it is still unset.
	// It reports false when another caller consumed the request first.
	MarkConsumed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// InvalidatePending consumes every outstanding request of the account and returns how many were affected.
	InvalidatePending(ctx context.Context, accountID uuid.UUID, at time.Time) (int64, error)
}
