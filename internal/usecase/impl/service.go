// Package impl contains the implementation of the application's business logic.
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
	"folio/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// publishSecurityEvent reports a completed security change. Delivery is best effort:
// a publish failure is logged and the caller's operation still succeeds.
func publishSecurityEvent(ctx context.Context, publisher service.EventPublisher, logger *slog.Logger, accountID uuid.UUID, kind entity.SecurityEventKind) {
	event := entity.NewSecurityEvent(accountID, kind, deliverycontext.GetRequestIDFromContext(ctx))
	if err := publisher.PublishSecurityEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish security event",
			slog.String("kind", string(kind)),
			slog.Any("error", err),
		)
	}
}

// applyAccountUpdate validates the partial update before it reaches the store.
func applyAccountUpdate(ctx context.Context, v *validator.Validate, repo repository.AccountRepository, id uuid.UUID, update repository.AccountUpdate) (*entity.Account, error) {
	if update.IsEmpty() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("no changes")
	}
	if err := v.Struct(update); err != nil {
		return nil, validation.Error(err)
	}

	account, err := repo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, errors.Wrap(domainerrors.ErrAccountNotFound, "update account")
		}

		return nil, errors.Wrap(err, "failed to update account")
	}

	return account, nil
}

// loadAccount maps a missing row to ErrAccountNotFound.
func loadAccount(ctx context.Context, repo repository.AccountRepository, id uuid.UUID) (*entity.Account, error) {
	account, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, errors.Wrap(domainerrors.ErrAccountNotFound, "load account")
		}

		return nil, errors.Wrap(err, "failed to load account")
	}

	return account, nil
}
