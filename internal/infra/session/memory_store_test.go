package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"folio/config"
	domainerrors "folio/internal/domain/errors"
	"folio/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T) (*MemoryStore, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	cfg := &config.Config{Session: &config.SessionConfig{
		MaxAge:        7 * 24 * time.Hour,
		SweepInterval: time.Hour,
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewMemoryStore(cfg, logger, WithClock(clock.Now)), clock
}

func TestMemoryStore_CreateAndResolve(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()
	accountID := uuid.New()

	sess, err := store.Create(ctx, accountID)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, accountID, sess.AccountID)
	assert.Equal(t, clock.Now().Add(7*24*time.Hour), sess.ExpiresAt)

	resolved, err := store.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, accountID, resolved)
}

func TestMemoryStore_TokensAreUniqueAndNotStoredRaw(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, uuid.New())
	require.NoError(t, err)
	second, err := store.Create(ctx, uuid.New())
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)

	store.mu.RLock()
	defer store.mu.RUnlock()
	_, rawKey := store.sessions[first.Token]
	assert.False(t, rawKey)
	assert.Len(t, store.sessions, 2)
}

func TestMemoryStore_ResolveUnknownToken(t *testing.T) {
	store, _ := newTestStore(t)

	for _, token := range []string{"", "does-not-exist"} {
		_, err := store.Resolve(context.Background(), token)
		assert.True(t, errors.Is(err, domainerrors.ErrUnauthenticated))
	}
}

func TestMemoryStore_ExpiredSessionIsRejectedAndRemoved(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, uuid.New())
	require.NoError(t, err)

	clock.Advance(7*24*time.Hour - time.Second)
	_, err = store.Resolve(ctx, sess.Token)
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = store.Resolve(ctx, sess.Token)
	assert.True(t, errors.Is(err, domainerrors.ErrUnauthenticated))
	assert.Equal(t, 0, store.Stats().Active)
	assert.Equal(t, int64(1), store.Stats().Swept)
}

func TestMemoryStore_Destroy(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, uuid.New())
	require.NoError(t, err)

	require.NoError(t, store.Destroy(ctx, sess.Token))
	_, err = store.Resolve(ctx, sess.Token)
	assert.True(t, errors.Is(err, domainerrors.ErrUnauthenticated))

	// Destroying twice or destroying garbage is harmless.
	require.NoError(t, store.Destroy(ctx, sess.Token))
	require.NoError(t, store.Destroy(ctx, "garbage"))
	assert.Equal(t, int64(1), store.Stats().Destroyed)
}

func TestMemoryStore_DestroyAccount(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	target := uuid.New()
	other := uuid.New()

	a, err := store.Create(ctx, target)
	require.NoError(t, err)
	b, err := store.Create(ctx, target)
	require.NoError(t, err)
	c, err := store.Create(ctx, other)
	require.NoError(t, err)

	assert.Equal(t, 2, store.DestroyAccount(ctx, target))

	for _, token := range []string{a.Token, b.Token} {
		_, err := store.Resolve(ctx, token)
		assert.True(t, errors.Is(err, domainerrors.ErrUnauthenticated))
	}
	resolved, err := store.Resolve(ctx, c.Token)
	require.NoError(t, err)
	assert.Equal(t, other, resolved)
}

func TestMemoryStore_Sweep(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	old, err := store.Create(ctx, uuid.New())
	require.NoError(t, err)

	clock.Advance(3 * 24 * time.Hour)
	fresh, err := store.Create(ctx, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 0, store.Sweep(clock.Now()))

	clock.Advance(4 * 24 * time.Hour)
	assert.Equal(t, 1, store.Sweep(clock.Now()))

	_, err = store.Resolve(ctx, old.Token)
	assert.Error(t, err)
	_, err = store.Resolve(ctx, fresh.Token)
	assert.NoError(t, err)

	stats := store.Stats()
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, int64(2), stats.Created)
	assert.Equal(t, int64(1), stats.Swept)
}

func TestMemoryStore_SweeperLifecycle(t *testing.T) {
	store, _ := newTestStore(t)

	store.StartSweeper()
	store.StartSweeper()
	store.StopSweeper()
	store.StopSweeper()
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()
	accountID := uuid.New()

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := store.Create(ctx, accountID)
			if !assert.NoError(t, err) {
				return
			}
			_, err = store.Resolve(ctx, sess.Token)
			assert.NoError(t, err)
			store.Sweep(clock.Now())
		}()
	}
	wg.Wait()

	assert.Equal(t, 32, store.DestroyAccount(ctx, accountID))
}
