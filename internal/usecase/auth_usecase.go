// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"folio/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to create the admin account.
type RegisterInput struct {
	Email    string `validate:"required,email,max=255"`
	Password string
	Name     string `validate:"required,min=1,max=100"`
}

// LoginInput carries credentials and, on the second round of a 2FA login, the one-time code.
type LoginInput struct {
	Email         string
	Password      string
	TwoFactorCode string
}

// ChangePasswordInput is used by a signed-in account to rotate its password.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// ResetPasswordInput completes the forgot-password flow.
type ResetPasswordInput struct {
	Token       string `validate:"required"`
	NewPassword string
	Email       string `validate:"required,email"`
}

// --- Output DTOs ---

// AuthResult is a freshly authenticated account with its new session.
type AuthResult struct {
	Account *entity.Account
	Session *entity.Session
}

// LoginResult is either an AuthResult or a request for the second factor.
// When RequiresTwoFactor is set, no session was created.
type LoginResult struct {
	RequiresTwoFactor bool
	AuthResult
}

// TwoFactorSetup is a candidate secret that is not stored until verified.
type TwoFactorSetup struct {
	Secret          string
	QRCode          string // PNG data URL
	ManualEntryKey  string
	ProvisioningURI string
}

// AuthUsecase covers sign-up, sign-in, the second factor and password recovery.
type AuthUsecase interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)

	// Logout ends the session. An empty or unknown token is not an error.
	Logout(ctx context.Context, sessionToken string) error

	// CurrentAccount resolves a session token to its account.
	CurrentAccount(ctx context.Context, sessionToken string) (*entity.Account, error)

	SetupTwoFactor(ctx context.Context, accountID uuid.UUID) (*TwoFactorSetup, error)
	VerifyAndEnableTwoFactor(ctx context.Context, accountID uuid.UUID, secret, code string) error
	DisableTwoFactor(ctx context.Context, accountID uuid.UUID) error

	ChangePassword(ctx context.Context, accountID uuid.UUID, input ChangePasswordInput) error

	// RequestPasswordReset mails a single-use reset link to the account owner.
	RequestPasswordReset(ctx context.Context, email string) error

	// ConsumePasswordReset sets a new password and signs out every session of the account.
	ConsumePasswordReset(ctx context.Context, input ResetPasswordInput) error
}
