package service

import (
	"context"

	"folio/internal/domain/entity"
)

// EventPublisher hands security events to the alert worker.
type EventPublisher interface {
	// PublishSecurityEvent publishes an event; delivery to the owner happens asynchronously.
	PublishSecurityEvent(ctx context.Context, event *entity.SecurityEvent) error

	// Close releases publisher resources.
	Close() error
}
