package service

import (
	"context"
	"time"
)

// PasswordResetMail is the content of a password reset message.
type PasswordResetMail struct {
	To        string
	Name      string
	ResetURL  string
	ExpiresIn time.Duration
}

// Mailer dispatches transactional email.
type Mailer interface {
	SendPasswordReset(ctx context.Context, mail PasswordResetMail) error
}
