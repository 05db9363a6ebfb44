package impl

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"folio/config"
	"folio/internal/domain/entity"
	domainerrors "folio/internal/domain/errors"
	"folio/internal/domain/repository"
	"folio/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		App:           &config.AppConfig{FrontendURL: "https://portfolio.example.com"},
		Auth:          &config.AuthConfig{BcryptCost: 4, MinPasswordLength: 8},
		Session:       &config.SessionConfig{MaxAge: 7 * 24 * time.Hour, SweepInterval: time.Hour},
		TOTP:          &config.TOTPConfig{Issuer: "Tech2Saini Portfolio", Period: 30, Skew: 2},
		QRCode:        &config.QRCodeConfig{Size: 128, ErrorCorrectionLevel: "M"},
		PasswordReset: &config.PasswordResetConfig{TTL: time.Hour},
	}
	cfg.SecretKey.Reset = "test_reset_secret_key_very_long_for_testing"

	return cfg
}

// --- in-memory repositories ---

type memoryAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*entity.Account

	// raceOnCreate simulates another request inserting the same email between lookup and insert.
	raceOnCreate bool
}

func newMemoryAccountRepo() *memoryAccountRepo {
	return &memoryAccountRepo{accounts: make(map[uuid.UUID]*entity.Account)}
}

func (r *memoryAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	cp := *account

	return &cp, nil
}

func (r *memoryAccountRepo) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, account := range r.accounts {
		if account.Email == email {
			cp := *account

			return &cp, nil
		}
	}

	return nil, repository.ErrAccountNotFound
}

func (r *memoryAccountRepo) Create(_ context.Context, account *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.raceOnCreate {
		return domainerrors.ErrDuplicateAccount.WrapMessage("email already exists")
	}
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return domainerrors.ErrDuplicateAccount.WrapMessage("email already exists")
		}
	}

	now := time.Now()
	account.ID = uuid.New()
	account.CreatedAt = now
	account.UpdatedAt = now
	cp := *account
	r.accounts[account.ID] = &cp

	return nil
}

func (r *memoryAccountRepo) Update(_ context.Context, id uuid.UUID, update repository.AccountUpdate) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	if update.Email != nil {
		account.Email = *update.Email
	}
	if update.Name != nil {
		account.Name = *update.Name
	}
	if update.PasswordHash != nil {
		account.PasswordHash = *update.PasswordHash
	}
	if update.TwoFactorSecret != nil {
		account.TwoFactorSecret = *update.TwoFactorSecret
	}
	if update.TwoFactorEnabled != nil {
		account.TwoFactorEnabled = *update.TwoFactorEnabled
	}
	if update.TelegramToken != nil {
		account.Telegram.Token = *update.TelegramToken
	}
	if update.TelegramChatID != nil {
		account.Telegram.ChatID = *update.TelegramChatID
	}
	if update.TelegramEnabled != nil {
		account.Telegram.Enabled = *update.TelegramEnabled
	}
	account.UpdatedAt = time.Now()
	cp := *account

	return &cp, nil
}

// put stores an account as-is, bypassing Create.
func (r *memoryAccountRepo) put(account *entity.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	cp := *account
	r.accounts[account.ID] = &cp
}

func (r *memoryAccountRepo) delete(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.accounts, id)
}

type memoryResetRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*entity.PasswordResetRequest
}

func newMemoryResetRepo() *memoryResetRepo {
	return &memoryResetRepo{requests: make(map[uuid.UUID]*entity.PasswordResetRequest)}
}

func (r *memoryResetRepo) Create(_ context.Context, request *entity.PasswordResetRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *request
	r.requests[request.ID] = &cp

	return nil
}

func (r *memoryResetRepo) FindByTokenHash(_ context.Context, tokenHash string) (*entity.PasswordResetRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, request := range r.requests {
		if request.TokenHash == tokenHash {
			cp := *request

			return &cp, nil
		}
	}

	return nil, repository.ErrResetRequestNotFound
}

func (r *memoryResetRepo) MarkConsumed(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	request, ok := r.requests[id]
	if !ok || request.ConsumedAt != nil {
		return false, nil
	}
	request.ConsumedAt = &at

	return true, nil
}

func (r *memoryResetRepo) InvalidatePending(_ context.Context, accountID uuid.UUID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, request := range r.requests {
		if request.AccountID == accountID && request.ConsumedAt == nil {
			consumedAt := at
			request.ConsumedAt = &consumedAt
			n++
		}
	}

	return n, nil
}

func (r *memoryResetRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.requests)
}

// fakeTxManager runs the callback directly against the in-memory repositories.
type fakeTxManager struct {
	accounts *memoryAccountRepo
	resets   *memoryResetRepo
}

func (m *fakeTxManager) Execute(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m)
}

func (m *fakeTxManager) AccountRepo() repository.AccountRepository {
	return m.accounts
}

func (m *fakeTxManager) PasswordResetRepo() repository.PasswordResetRepository {
	return m.resets
}

// countingHasher is a transparent hasher that records how often Check runs.
type countingHasher struct {
	mu     sync.Mutex
	checks int
}

const fakeHashPrefix = "hashed:"

func (h *countingHasher) Hash(password string) (string, error) {
	return fakeHashPrefix + password, nil
}

func (h *countingHasher) Check(password, hash string) bool {
	h.mu.Lock()
	h.checks++
	h.mu.Unlock()

	return strings.HasPrefix(hash, fakeHashPrefix) && hash == fakeHashPrefix+password
}

func (h *countingHasher) DummyHash() string {
	return "dummy-hash-matches-nothing"
}

func (h *countingHasher) checkCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.checks
}

// --- testify mocks for outbound collaborators ---

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendPasswordReset(ctx context.Context, mail service.PasswordResetMail) error {
	args := m.Called(ctx, mail)

	return args.Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendMessage(ctx context.Context, botToken, chatID, text string) error {
	args := m.Called(ctx, botToken, chatID, text)

	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishSecurityEvent(ctx context.Context, event *entity.SecurityEvent) error {
	args := m.Called(ctx, event)

	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	return nil
}

// expectEvent asserts exactly one event of kind is published.
func (m *mockPublisher) expectEvent(kind entity.SecurityEventKind) *mock.Call {
	return m.On("PublishSecurityEvent", mock.Anything, mock.MatchedBy(func(event *entity.SecurityEvent) bool {
		return event.Kind == kind
	})).Return(nil).Once()
}
