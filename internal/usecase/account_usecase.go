package usecase

import (
	"context"

	"folio/internal/domain/entity"

	"github.com/google/uuid"
)

// ProfileInput is a partial profile edit; nil fields are left unchanged.
type ProfileInput struct {
	Name  *string `validate:"omitempty,min=1,max=100"`
	Email *string `validate:"omitempty,email,max=255"`
}

// LinkTelegramInput names the bot and chat that receive account alerts.
type LinkTelegramInput struct {
	Token  string `validate:"required,max=255"`
	ChatID string `validate:"required,max=64"`
}

// AccountUsecase covers profile and notification settings of a signed-in account.
type AccountUsecase interface {
	UpdateProfile(ctx context.Context, accountID uuid.UUID, input ProfileInput) (*entity.Account, error)

	// LinkTelegram sends a test message and stores the channel only if it arrives.
	LinkTelegram(ctx context.Context, accountID uuid.UUID, input LinkTelegramInput) error
	DisableTelegram(ctx context.Context, accountID uuid.UUID) error
	SendTelegramMessage(ctx context.Context, accountID uuid.UUID, text string) error
}
