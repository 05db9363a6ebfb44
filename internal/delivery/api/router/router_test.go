package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"folio/config"
	"folio/internal/delivery/api"
	"folio/internal/delivery/api/middleware"
	"folio/internal/delivery/api/router"
	"folio/internal/delivery/api/router/handler"
	"folio/internal/domain/entity"
	domainerrors "folio/internal/domain/errors"
	"folio/internal/domain/repository"
	"folio/internal/domain/service"
	"folio/internal/infra/auth"
	"folio/internal/infra/qrcode"
	"folio/internal/infra/session"
	"folio/internal/usecase/impl"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// accountTable is a minimal AccountRepository for driving the API end to end.
type accountTable struct {
	mu   sync.Mutex
	rows map[uuid.UUID]entity.Account
}

func (r *accountTable) FindByID(_ context.Context, id uuid.UUID) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	return &row, nil
}

func (r *accountTable) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.Email == email {
			return &row, nil
		}
	}

	return nil, repository.ErrAccountNotFound
}

func (r *accountTable) Create(_ context.Context, account *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.Email == account.Email {
			return domainerrors.ErrDuplicateAccount
		}
	}
	account.ID = uuid.New()
	r.rows[account.ID] = *account

	return nil
}

func (r *accountTable) Update(_ context.Context, id uuid.UUID, update repository.AccountUpdate) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	if update.Name != nil {
		row.Name = *update.Name
	}
	if update.Email != nil {
		row.Email = *update.Email
	}
	if update.PasswordHash != nil {
		row.PasswordHash = *update.PasswordHash
	}
	if update.TwoFactorSecret != nil {
		row.TwoFactorSecret = *update.TwoFactorSecret
	}
	if update.TwoFactorEnabled != nil {
		row.TwoFactorEnabled = *update.TwoFactorEnabled
	}
	r.rows[id] = row

	return &row, nil
}

type discardPublisher struct{}

func (discardPublisher) PublishSecurityEvent(context.Context, *entity.SecurityEvent) error {
	return nil
}

func (discardPublisher) Close() error {
	return nil
}

type apiFixture struct {
	server *echo.Echo
	otp    service.OTPService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	cfg := &config.Config{
		App:           &config.AppConfig{FrontendURL: "http://localhost:5173"},
		Auth:          &config.AuthConfig{BcryptCost: 4, MinPasswordLength: 8},
		Session:       &config.SessionConfig{MaxAge: 7 * 24 * time.Hour, SweepInterval: time.Hour, CookieName: "folio_sid"},
		TOTP:          &config.TOTPConfig{Issuer: "Tech2Saini Portfolio", Period: 30, Skew: 2},
		QRCode:        &config.QRCodeConfig{Size: 128, ErrorCorrectionLevel: "M"},
		PasswordReset: &config.PasswordResetConfig{TTL: time.Hour},
	}
	cfg.HTTP.MaxRequestBodySize = "100KB"
	cfg.SecretKey.Reset = "router_test_reset_secret_key_long_enough"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	accounts := &accountTable{rows: make(map[uuid.UUID]entity.Account)}
	otp := auth.NewTOTPService(cfg)

	resetTokens, err := auth.NewResetTokenService(cfg)
	require.NoError(t, err)

	authUC := impl.NewAuthService(impl.AuthServiceParams{
		AccountRepo: accounts,
		Hasher:      auth.NewBcryptHasher(cfg),
		OTP:         otp,
		QRCode:      qrcode.NewQRCodeService(cfg),
		ResetTokens: resetTokens,
		Sessions:    session.NewMemoryStore(cfg, logger),
		Publisher:   discardPublisher{},
		Config:      cfg,
		Logger:      logger,
	})
	accountUC := impl.NewAccountService(impl.AccountServiceParams{
		AccountRepo: accounts,
		Publisher:   discardPublisher{},
		Logger:      logger,
	})

	sessionMiddleware := middleware.NewSessionMiddleware(middleware.SessionMiddlewareParams{AuthUC: authUC, Config: cfg})

	server := api.NewEcho(cfg, logger, router.RouterParams{
		AuthHandler:       handler.NewAuthHandler(handler.AuthHandlerParams{AuthUC: authUC, Session: sessionMiddleware, Logger: logger}),
		AccountHandler:    handler.NewAccountHandler(handler.AccountHandlerParams{AccountUC: accountUC, Logger: logger}),
		SessionMiddleware: sessionMiddleware,
	})

	return &apiFixture{server: server, otp: otp}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "folio_sid" && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatalf("response has no session cookie: %v", rec.Header().Values(echo.HeaderSetCookie))

	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

var alice = map[string]string{
	"email":    "alice@example.com",
	"password": "correct-horse-battery",
	"name":     "Alice",
}

func TestAPI_Health(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAPI_WrongPasswordIsUnauthorizedWithoutCookie(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/auth/register", alice, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	view := decode[entity.AccountView](t, rec)
	assert.Equal(t, "alice@example.com", view.Email)
	assert.False(t, view.TwoFactorEnabled)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = f.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Values(echo.HeaderSetCookie))

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Invalid email or password", body["error"])
	assert.Equal(t, "INVALID_CREDENTIALS", body["code"])
	assert.NotContains(t, body, "details")
}

func TestAPI_DuplicateRegistration(t *testing.T) {
	f := newAPIFixture(t)

	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/auth/register", alice, nil).Code)

	rec := f.do(t, http.MethodPost, "/auth/register", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already exists", decode[map[string]any](t, rec)["error"])
}

func TestAPI_RegisterValidation(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/auth/register", map[string]string{"email": "nope", "password": "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])
	assert.Contains(t, body["details"], "email")
	assert.Contains(t, body["details"], "name")
}

func TestAPI_TwoFactorLogin(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/auth/register", alice, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	cookie := sessionCookie(t, rec)

	rec = f.do(t, http.MethodPost, "/auth/setup-2fa", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	setup := decode[handler.TwoFactorSetupResponse](t, rec)
	assert.Equal(t, setup.Secret, setup.ManualEntryKey)
	assert.Contains(t, setup.QRCode, "data:image/png;base64,")

	code, err := f.otp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)

	rec = f.do(t, http.MethodPost, "/auth/verify-2fa", map[string]string{"token": code, "secret": setup.Secret}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/auth/user", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode[handler.UserResponse](t, rec)
	assert.True(t, user.TwoFactorEnabled)
	assert.False(t, user.Telegram.Enabled)

	credentials := map[string]string{"email": alice["email"], "password": alice["password"]}
	rec = f.do(t, http.MethodPost, "/auth/login", credentials, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"requiresTwoFactor":true}`, rec.Body.String())
	assert.Empty(t, rec.Header().Values(echo.HeaderSetCookie))

	code, err = f.otp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	credentials["twoFactorCode"] = code

	rec = f.do(t, http.MethodPost, "/auth/login", credentials, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	loginCookie := sessionCookie(t, rec)
	assert.True(t, loginCookie.HttpOnly)
	assert.NotEqual(t, cookie.Value, loginCookie.Value)

	view := decode[entity.AccountView](t, rec)
	assert.True(t, view.TwoFactorEnabled)
}

func TestAPI_SessionRoutesRequireCookie(t *testing.T) {
	f := newAPIFixture(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/auth/user"},
		{http.MethodPost, "/auth/logout"},
		{http.MethodPost, "/auth/setup-2fa"},
		{http.MethodPost, "/auth/change-password"},
		{http.MethodPut, "/auth/update-profile"},
		{http.MethodPost, "/auth/send-telegram-message"},
	} {
		rec := f.do(t, route.method, route.path, nil, &http.Cookie{Name: "folio_sid", Value: "forged"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, route.path)
		assert.Equal(t, "UNAUTHENTICATED", decode[map[string]any](t, rec)["code"], route.path)
	}
}

func TestAPI_LogoutEndsSession(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/auth/register", alice, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	cookie := sessionCookie(t, rec)

	rec = f.do(t, http.MethodPost, "/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderSetCookie), "Max-Age=0")

	rec = f.do(t, http.MethodGet, "/auth/user", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_UpdateProfile(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/auth/register", alice, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	cookie := sessionCookie(t, rec)

	rec = f.do(t, http.MethodPut, "/auth/update-profile", map[string]string{"name": "Alice Liddell"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Alice Liddell", decode[entity.AccountView](t, rec).Name)

	rec = f.do(t, http.MethodPut, "/auth/update-profile", map[string]string{}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
