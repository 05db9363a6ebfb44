package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is a live authenticated context for one account.
// Token is the raw cookie value and is only populated on creation.
type Session struct {
	Token     string
	AccountID uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ActiveAt reports whether the session is still valid at the given instant.
func (s *Session) ActiveAt(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// SessionStats are counters exposed by the session manager for diagnostics.
type SessionStats struct {
	Active    int   `json:"active"`
	Created   int64 `json:"created"`
	Destroyed int64 `json:"destroyed"`
	Swept     int64 `json:"swept"`
}
