// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account is the single identity that can sign in to the portfolio back office.
type Account struct {
	ID               uuid.UUID       // Assigned by the store at creation, never changes.
	Email            string          // Login key, unique and case-sensitive as stored.
	PasswordHash     string          // bcrypt hash of the current password.
	Name             string          // Display name.
	TwoFactorSecret  string          // Base32 TOTP secret, empty when no second factor is set up.
	TwoFactorEnabled bool            // Raw flag as persisted; see SecondFactorRequired.
	Telegram         TelegramChannel // Optional out-of-band alert destination.
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TelegramChannel holds the bot credentials used for account alerts.
type TelegramChannel struct {
	Token   string
	ChatID  string
	Enabled bool
}

// Usable reports whether messages can be sent through the channel.
func (c TelegramChannel) Usable() bool {
	return c.Enabled && c.Token != "" && c.ChatID != ""
}

// SecondFactorRequired reports whether login must be completed with a one-time code.
// An enabled flag without a stored secret counts as disabled.
func (a *Account) SecondFactorRequired() bool {
	return a.TwoFactorEnabled && a.TwoFactorSecret != ""
}

// AccountView is the client-safe projection of an Account.
type AccountView struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	TwoFactorEnabled bool      `json:"twoFactorEnabled"`
}

// PublicView strips credentials and secrets from the account.
func (a *Account) PublicView() AccountView {
	return AccountView{
		ID:               a.ID,
		Email:            a.Email,
		Name:             a.Name,
		TwoFactorEnabled: a.SecondFactorRequired(),
	}
}
