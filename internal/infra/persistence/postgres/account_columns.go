package postgres

import (
	"folio/internal/domain/repository"
)

// accountUpdateColumns translates a partial update into users column assignments.
// Every AccountUpdate field is mapped here and nowhere else. A pointer to an
// empty string is a deliberate clear; the TOTP secret clears to NULL.
func accountUpdateColumns(update repository.AccountUpdate) map[string]any {
	cols := make(map[string]any)

	if update.Email != nil {
		cols["email"] = *update.Email
	}
	if update.Name != nil {
		cols["name"] = *update.Name
	}
	if update.PasswordHash != nil {
		cols["password"] = *update.PasswordHash
	}
	if update.TwoFactorSecret != nil {
		if *update.TwoFactorSecret == "" {
			cols["two_factor_secret"] = nil
		} else {
			cols["two_factor_secret"] = *update.TwoFactorSecret
		}
	}
	if update.TwoFactorEnabled != nil {
		cols["two_factor_enabled"] = *update.TwoFactorEnabled
	}
	if update.TelegramToken != nil {
		cols["telegram_token"] = *update.TelegramToken
	}
	if update.TelegramChatID != nil {
		cols["telegram_chat_id"] = *update.TelegramChatID
	}
	if update.TelegramEnabled != nil {
		cols["telegramotp"] = *update.TelegramEnabled
	}

	return cols
}
