// Package session keeps authenticated sessions in process memory.
// Sessions do not survive a restart and are not shared between replicas.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"folio/config"
	"folio/internal/domain/entity"
	domainerrors "folio/internal/domain/errors"
	"folio/internal/domain/service"
	"folio/internal/errors"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const tokenBytes = 32

type entry struct {
	accountID uuid.UUID
	createdAt time.Time
	expiresAt time.Time
}

// MemoryStore is a SessionManager backed by a map keyed by the SHA-256 of each token.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]entry

	maxAge        time.Duration
	sweepInterval time.Duration
	now           func() time.Time
	logger        *slog.Logger

	created   atomic.Int64
	destroyed atomic.Int64
	swept     atomic.Int64

	stop chan struct{}
	done chan struct{}
}

var _ service.SessionManager = (*MemoryStore)(nil)

// Option customises a MemoryStore.
type Option func(*MemoryStore)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an empty store using the session section of the config.
func NewMemoryStore(cfg *config.Config, logger *slog.Logger, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions:      make(map[string]entry),
		maxAge:        cfg.Session.MaxAge,
		sweepInterval: cfg.Session.SweepInterval,
		now:           time.Now,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewSessionManager registers the sweeper with the fx lifecycle and exposes the store.
func NewSessionManager(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) service.SessionManager {
	store := NewMemoryStore(cfg, logger)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			store.StartSweeper()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			store.StopSweeper()

			return nil
		},
	})

	return store
}

func (s *MemoryStore) Create(ctx context.Context, accountID uuid.UUID) (*entity.Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, errors.Wrap(err, "generate session token")
	}

	now := s.now()
	e := entry{
		accountID: accountID,
		createdAt: now,
		expiresAt: now.Add(s.maxAge),
	}

	s.mu.Lock()
	s.sessions[hashToken(token)] = e
	s.mu.Unlock()
	s.created.Add(1)

	return &entity.Session{
		Token:     token,
		AccountID: accountID,
		CreatedAt: e.createdAt,
		ExpiresAt: e.expiresAt,
	}, nil
}

func (s *MemoryStore) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, domainerrors.ErrUnauthenticated
	}

	key := hashToken(token)

	s.mu.RLock()
	e, ok := s.sessions[key]
	s.mu.RUnlock()

	if !ok {
		return uuid.Nil, domainerrors.ErrUnauthenticated
	}

	if !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock; the sweeper may have raced us.
		if cur, still := s.sessions[key]; still && cur == e {
			delete(s.sessions, key)
			s.swept.Add(1)
		}
		s.mu.Unlock()

		return uuid.Nil, domainerrors.ErrUnauthenticated
	}

	return e.accountID, nil
}

func (s *MemoryStore) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	key := hashToken(token)

	s.mu.Lock()
	_, ok := s.sessions[key]
	delete(s.sessions, key)
	s.mu.Unlock()

	if ok {
		s.destroyed.Add(1)
	}

	return nil
}

func (s *MemoryStore) DestroyAccount(ctx context.Context, accountID uuid.UUID) int {
	removed := 0

	s.mu.Lock()
	for key, e := range s.sessions {
		if e.accountID == accountID {
			delete(s.sessions, key)
			removed++
		}
	}
	s.mu.Unlock()

	s.destroyed.Add(int64(removed))

	return removed
}

func (s *MemoryStore) Sweep(now time.Time) int {
	removed := 0

	s.mu.Lock()
	for key, e := range s.sessions {
		if !now.Before(e.expiresAt) {
			delete(s.sessions, key)
			removed++
		}
	}
	s.mu.Unlock()

	s.swept.Add(int64(removed))

	return removed
}

func (s *MemoryStore) MaxAge() time.Duration {
	return s.maxAge
}

func (s *MemoryStore) Stats() entity.SessionStats {
	s.mu.RLock()
	active := len(s.sessions)
	s.mu.RUnlock()

	return entity.SessionStats{
		Active:    active,
		Created:   s.created.Load(),
		Destroyed: s.destroyed.Load(),
		Swept:     s.swept.Load(),
	}
}

// StartSweeper launches the periodic expiry sweep. Calling it twice is a no-op.
func (s *MemoryStore) StartSweeper() {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()

		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)

		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if n := s.Sweep(s.now()); n > 0 {
					s.logger.Info("Swept expired sessions", slog.Int("removed", n))
				}
			}
		}
	}()
}

// StopSweeper stops the sweep goroutine and waits for it to exit.
func (s *MemoryStore) StopSweeper() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}
