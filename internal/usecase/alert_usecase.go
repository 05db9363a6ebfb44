package usecase

import (
	"context"

	"folio/internal/domain/entity"
)

// AlertUsecase turns security events into messages for the account owner.
type AlertUsecase interface {
	// Deliver returns nil when there is nothing to send (unknown account,
	// no enabled channel). An error means delivery should be retried.
	Deliver(ctx context.Context, event *entity.SecurityEvent) error
}
