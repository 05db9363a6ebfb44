package impl

import (
	"context"
	"log/slog"

	deliverycontext "folio/internal/delivery/context"
	"folio/internal/domain/entity"
	domainerrors "folio/internal/domain/errors"
	"folio/internal/domain/repository"
	"folio/internal/domain/service"
	"folio/internal/errors"
	"folio/internal/usecase"
	"folio/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/fx"
)

const maxTelegramMessageLength = 4096

// accountService implements the AccountUsecase interface.
type accountService struct {
	accountRepo repository.AccountRepository
	notifier    service.TelegramNotifier
	publisher   service.EventPublisher
	validate    *validator.Validate
	logger      *slog.Logger
}

// AccountServiceParams holds dependencies for AccountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	AccountRepo repository.AccountRepository
	Notifier    service.TelegramNotifier
	Publisher   service.EventPublisher
	Logger      *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		accountRepo: params.AccountRepo,
		notifier:    params.Notifier,
		publisher:   params.Publisher,
		validate:    validation.New(),
		logger:      params.Logger,
	}
}

func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *accountService) UpdateProfile(ctx context.Context, accountID uuid.UUID, input usecase.ProfileInput) (*entity.Account, error) {
	if err := srv.validate.Struct(input); err != nil {
		return nil, validation.Error(err)
	}

	if input.Email != nil {
		other, err := srv.accountRepo.FindByEmail(ctx, *input.Email)
		switch {
		case err == nil && other.ID != accountID:
			return nil, domainerrors.ErrDuplicateAccount.WithDetails("Email already in use")
		case err != nil && !errors.Is(err, repository.ErrAccountNotFound):
			return nil, errors.Wrap(err, "failed to check email availability")
		}
	}

	account, err := applyAccountUpdate(ctx, srv.validate, srv.accountRepo, accountID, repository.AccountUpdate{
		Name:  input.Name,
		Email: input.Email,
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Profile updated", slog.String("account_id", accountID.String()))

	return account, nil
}

func (srv *accountService) LinkTelegram(ctx context.Context, accountID uuid.UUID, input usecase.LinkTelegramInput) error {
	if err := srv.validate.Struct(input); err != nil {
		return validation.Error(err)
	}

	account, err := loadAccount(ctx, srv.accountRepo, accountID)
	if err != nil {
		return err
	}

	if err := srv.notifier.SendMessage(ctx, input.Token, input.ChatID, "✅ Telegram notifications enabled for "+account.Name); err != nil {
		srv.log(ctx).Warn("Telegram test message failed", slog.Any("error", err))

		return errors.Wrap(domainerrors.ErrUpstreamFailure, "telegram test message")
	}

	if _, err := applyAccountUpdate(ctx, srv.validate, srv.accountRepo, accountID, repository.AccountUpdate{
		TelegramToken:   &input.Token,
		TelegramChatID:  &input.ChatID,
		TelegramEnabled: repository.Ptr(true),
	}); err != nil {
		return err
	}

	srv.log(ctx).Info("Telegram channel linked", slog.String("account_id", accountID.String()))
	publishSecurityEvent(ctx, srv.publisher, srv.log(ctx), accountID, entity.SecurityEventTelegramLinked)

	return nil
}

func (srv *accountService) DisableTelegram(ctx context.Context, accountID uuid.UUID) error {
	_, err := applyAccountUpdate(ctx, srv.validate, srv.accountRepo, accountID, repository.AccountUpdate{
		TelegramEnabled: repository.Ptr(false),
	})

	return err
}

func (srv *accountService) SendTelegramMessage(ctx context.Context, accountID uuid.UUID, text string) error {
	if text == "" || len(text) > maxTelegramMessageLength {
		return domainerrors.ErrValidationFailed.WithDetails("message must be between 1 and 4096 characters")
	}

	account, err := loadAccount(ctx, srv.accountRepo, accountID)
	if err != nil {
		return err
	}

	if !account.Telegram.Usable() {
		return domainerrors.ErrValidationFailed.WithDetails("Telegram notifications are not enabled")
	}

	if err := srv.notifier.SendMessage(ctx, account.Telegram.Token, account.Telegram.ChatID, text); err != nil {
		srv.log(ctx).Warn("Telegram message failed", slog.Any("error", err))

		return errors.Wrap(domainerrors.ErrUpstreamFailure, "send telegram message")
	}

	return nil
}
