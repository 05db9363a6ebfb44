// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"folio/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrAccountNotFound is returned when no account matches the lookup key.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository is the credential store consumed by the auth core.
type AccountRepository interface {
	// FindByID retrieves a single account by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// FindByEmail retrieves a single account by its exact email.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// Create persists a new account and fills in its generated ID and timestamps.
	// A unique-constraint violation on email is reported as domainerrors.ErrDuplicateAccount.
	Create(ctx context.Context, account *entity.Account) error

	// Update applies a partial update and returns the account as stored afterwards.
	Update(ctx context.Context, id uuid.UUID, update AccountUpdate) (*entity.Account, error)
}

// AccountUpdate is a partial account update. A nil field is left unchanged;
// a pointer to the zero value clears the column.
type AccountUpdate struct {
	Email            *string `validate:"omitempty,email,max=255"`
	Name             *string `validate:"omitempty,min=1,max=100"`
	PasswordHash     *string `validate:"omitempty,min=1"`
	TwoFactorSecret  *string `validate:"omitempty,totpsecret"`
	TwoFactorEnabled *bool
	TelegramToken    *string `validate:"omitempty,max=255"`
	TelegramChatID   *string `validate:"omitempty,max=64"`
	TelegramEnabled  *bool
}

// IsEmpty reports whether the update carries no changes.
func (u AccountUpdate) IsEmpty() bool {
	return u.Email == nil &&
		u.Name == nil &&
		u.PasswordHash == nil &&
		u.TwoFactorSecret == nil &&
		u.TwoFactorEnabled == nil &&
		u.TelegramToken == nil &&
		u.TelegramChatID == nil &&
		u.TelegramEnabled == nil
}

// Ptr returns a pointer to v, for building AccountUpdate literals.
func Ptr[T any](v T) *T {
	return &v
}
