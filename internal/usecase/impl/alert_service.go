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

	"go.uber.org/fx"
)

// alertService implements the AlertUsecase interface.
type alertService struct {
	accountRepo repository.AccountRepository
	notifier    service.TelegramNotifier
	logger      *slog.Logger
}

// AlertServiceParams holds dependencies for AlertService, injected by Fx.
type AlertServiceParams struct {
	fx.In

	AccountRepo repository.AccountRepository
	Notifier    service.TelegramNotifier
	Logger      *slog.Logger
}

// NewAlertService is the constructor for alertService.
func NewAlertService(params AlertServiceParams) usecase.AlertUsecase {
	return &alertService{
		accountRepo: params.AccountRepo,
		notifier:    params.Notifier,
		logger:      params.Logger,
	}
}

func (srv *alertService) Deliver(ctx context.Context, event *entity.SecurityEvent) error {
	logger := deliverycontext.GetLoggerOrDefault(ctx, srv.logger).With(
		slog.String("event_id", event.ID.String()),
		slog.String("kind", string(event.Kind)),
	)

	account, err := srv.accountRepo.FindByID(ctx, event.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			logger.Info("Dropping alert for unknown account")

			return nil
		}

		return errors.Wrap(err, "failed to load account for alert")
	}

	if !account.Telegram.Usable() {
		logger.Debug("No alert channel enabled, skipping")

		return nil
	}

	if err := srv.notifier.SendMessage(ctx, account.Telegram.Token, account.Telegram.ChatID, event.Describe()); err != nil {
		logger.Warn("Alert delivery failed", slog.Any("error", err))

		return errors.Wrap(domainerrors.ErrUpstreamFailure, err.Error())
	}

	logger.Info("Alert delivered")

	return nil
}
