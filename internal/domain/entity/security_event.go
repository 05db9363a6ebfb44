package entity

import (
	"time"

	"github.com/google/uuid"
)

// SecurityEventKind names an account change worth alerting the owner about.
type SecurityEventKind string

const (
	SecurityEventPasswordChanged   SecurityEventKind = "password_changed"
	SecurityEventPasswordReset     SecurityEventKind = "password_reset"
	SecurityEventTwoFactorEnabled  SecurityEventKind = "two_factor_enabled"
	SecurityEventTwoFactorDisabled SecurityEventKind = "two_factor_disabled"
	SecurityEventTelegramLinked    SecurityEventKind = "telegram_linked"
)

// SecurityEvent is published after a security-relevant mutation and delivered by the alert worker.
type SecurityEvent struct {
	ID         uuid.UUID         `json:"id"`
	AccountID  uuid.UUID         `json:"accountId"`
	Kind       SecurityEventKind `json:"kind"`
	OccurredAt time.Time         `json:"occurredAt"`
	RequestID  string            `json:"requestId,omitempty"`
}

// NewSecurityEvent stamps a new event for the account.
func NewSecurityEvent(accountID uuid.UUID, kind SecurityEventKind, requestID string) *SecurityEvent {
	return &SecurityEvent{
		ID:         uuid.New(),
		AccountID:  accountID,
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
		RequestID:  requestID,
	}
}

// Describe renders the event as a short human-readable alert.
func (e *SecurityEvent) Describe() string {
	at := e.OccurredAt.UTC().Format("2006-01-02 15:04 MST")

	switch e.Kind {
	case SecurityEventPasswordChanged:
		return "Your portfolio admin password was changed at " + at + "."
	case SecurityEventPasswordReset:
		return "Your portfolio admin password was reset via email at " + at + ". All sessions were signed out."
	case SecurityEventTwoFactorEnabled:
		return "Two-factor authentication was enabled at " + at + "."
	case SecurityEventTwoFactorDisabled:
		return "Two-factor authentication was disabled at " + at + ". If this wasn't you, change your password now."
	case SecurityEventTelegramLinked:
		return "Telegram alerts were linked to your account at " + at + "."
	default:
		return "Security event " + string(e.Kind) + " at " + at + "."
	}
}
