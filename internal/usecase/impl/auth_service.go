package impl

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"folio/config"
	deliverycontext "folio/internal/delivery/context"
	"folio/internal/domain/entity"
	domainerrors "folio/internal/domain/errors"
	"folio/internal/domain/repository"
	"folio/internal/domain/service"
	"folio/internal/errors"
	"folio/internal/usecase"
	"folio/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/fx"
)

const loginFailed = "login failed"

// authService implements the AuthUsecase interface.
type authService struct {
	txManager   repository.TransactionManager
	accountRepo repository.AccountRepository
	resetRepo   repository.PasswordResetRepository
	hasher      service.PasswordHasher
	otp         service.OTPService
	qrcode      service.QRCodeService
	resetTokens service.ResetTokenService
	sessions    service.SessionManager
	mailer      service.Mailer
	publisher   service.EventPublisher
	validate    *validator.Validate

	minPasswordLength       int
	revealUnknownResetEmail bool
	frontendURL             string

	now    func() time.Time
	logger *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	AccountRepo repository.AccountRepository
	ResetRepo   repository.PasswordResetRepository
	Hasher      service.PasswordHasher
	OTP         service.OTPService
	QRCode      service.QRCodeService
	ResetTokens service.ResetTokenService
	Sessions    service.SessionManager
	Mailer      service.Mailer
	Publisher   service.EventPublisher
	Config      *config.Config
	Logger      *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	srv := &authService{
		txManager:   params.TxManager,
		accountRepo: params.AccountRepo,
		resetRepo:   params.ResetRepo,
		hasher:      params.Hasher,
		otp:         params.OTP,
		qrcode:      params.QRCode,
		resetTokens: params.ResetTokens,
		sessions:    params.Sessions,
		mailer:      params.Mailer,
		publisher:   params.Publisher,
		validate:    validation.New(),

		minPasswordLength: 8,

		now:    time.Now,
		logger: params.Logger,
	}

	if cfg := params.Config; cfg != nil {
		if cfg.Auth != nil {
			if cfg.Auth.MinPasswordLength > 0 {
				srv.minPasswordLength = cfg.Auth.MinPasswordLength
			}
			srv.revealUnknownResetEmail = cfg.Auth.RevealUnknownResetEmail
		}
		if cfg.App != nil {
			srv.frontendURL = cfg.App.FrontendURL
		}
	}

	return srv
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *authService) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.AuthResult, error) {
	if err := srv.validate.Struct(input); err != nil {
		return nil, validation.Error(err)
	}
	if err := validation.Password("password", input.Password, srv.minPasswordLength); err != nil {
		return nil, err
	}

	_, err := srv.accountRepo.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return nil, errors.Wrap(domainerrors.ErrDuplicateAccount, "register")
	case !errors.Is(err, repository.ErrAccountNotFound):
		return nil, errors.Wrap(err, "failed to look up email during registration")
	}

	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	account := &entity.Account{
		Email:        input.Email,
		PasswordHash: passwordHash,
		Name:         input.Name,
	}
	// A concurrent registration of the same email loses on the unique index here.
	if err := srv.accountRepo.Create(ctx, account); err != nil {
		return nil, errors.Wrap(err, "failed to create account")
	}

	session, err := srv.sessions.Create(ctx, account.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session after registration")
	}

	srv.log(ctx).Info("Account registered", slog.String("account_id", account.ID.String()))

	return &usecase.AuthResult{Account: account, Session: session}, nil
}

func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginResult, error) {
	account, err := srv.accountRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrAccountNotFound) {
			return nil, errors.Wrap(err, "failed to look up account")
		}

		// Pay the bcrypt cost anyway so an unknown email looks like a wrong password.
		srv.hasher.Check(input.Password, srv.hasher.DummyHash())

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, loginFailed)
	}

	if !srv.hasher.Check(input.Password, account.PasswordHash) {
		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, loginFailed)
	}

	if account.SecondFactorRequired() {
		if input.TwoFactorCode == "" {
			return &usecase.LoginResult{RequiresTwoFactor: true}, nil
		}
		if !srv.otp.Validate(input.TwoFactorCode, account.TwoFactorSecret, srv.now()) {
			srv.log(ctx).Warn("Rejected two-factor code", slog.String("account_id", account.ID.String()))

			return nil, errors.Wrap(domainerrors.ErrInvalidTwoFactorCode, loginFailed)
		}
	}

	session, err := srv.sessions.Create(ctx, account.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}

	srv.log(ctx).Info("Login succeeded", slog.String("account_id", account.ID.String()))

	return &usecase.LoginResult{AuthResult: usecase.AuthResult{Account: account, Session: session}}, nil
}

func (srv *authService) Logout(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}

	return errors.Wrap(srv.sessions.Destroy(ctx, sessionToken), "failed to destroy session")
}

func (srv *authService) CurrentAccount(ctx context.Context, sessionToken string) (*entity.Account, error) {
	accountID, err := srv.sessions.Resolve(ctx, sessionToken)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrUnauthenticated, "resolve session")
	}

	account, err := srv.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			removed := srv.sessions.DestroyAccount(ctx, accountID)
			srv.log(ctx).Warn("Session pointed at a deleted account",
				slog.String("account_id", accountID.String()),
				slog.Int("sessions_removed", removed),
			)

			return nil, errors.Wrap(domainerrors.ErrUnauthenticated, "account no longer exists")
		}

		return nil, errors.Wrap(err, "failed to load session account")
	}

	return account, nil
}

func (srv *authService) SetupTwoFactor(ctx context.Context, accountID uuid.UUID) (*usecase.TwoFactorSetup, error) {
	account, err := loadAccount(ctx, srv.accountRepo, accountID)
	if err != nil {
		return nil, err
	}

	key, err := srv.otp.Generate(account.Email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate two-factor secret")
	}

	qr, err := srv.qrcode.EncodeDataURL(key.URI)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render two-factor QR code")
	}

	return &usecase.TwoFactorSetup{
		Secret:          key.Secret,
		QRCode:          qr,
		ManualEntryKey:  key.Secret,
		ProvisioningURI: key.URI,
	}, nil
}

func (srv *authService) VerifyAndEnableTwoFactor(ctx context.Context, accountID uuid.UUID, secret, code string) error {
	if secret == "" || code == "" {
		return domainerrors.ErrValidationFailed.WithDetails("token and secret are required")
	}

	if !srv.otp.Validate(code, secret, srv.now()) {
		return errors.Wrap(domainerrors.ErrInvalidTwoFactorCode, "verify two-factor setup")
	}

	_, err := applyAccountUpdate(ctx, srv.validate, srv.accountRepo, accountID, repository.AccountUpdate{
		TwoFactorSecret:  &secret,
		TwoFactorEnabled: repository.Ptr(true),
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("Two-factor authentication enabled", slog.String("account_id", accountID.String()))
	publishSecurityEvent(ctx, srv.publisher, srv.log(ctx), accountID, entity.SecurityEventTwoFactorEnabled)

	return nil
}

func (srv *authService) DisableTwoFactor(ctx context.Context, accountID uuid.UUID) error {
	_, err := applyAccountUpdate(ctx, srv.validate, srv.accountRepo, accountID, repository.AccountUpdate{
		TwoFactorSecret:  repository.Ptr(""),
		TwoFactorEnabled: repository.Ptr(false),
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("Two-factor authentication disabled", slog.String("account_id", accountID.String()))
	publishSecurityEvent(ctx, srv.publisher, srv.log(ctx), accountID, entity.SecurityEventTwoFactorDisabled)

	return nil
}

func (srv *authService) ChangePassword(ctx context.Context, accountID uuid.UUID, input usecase.ChangePasswordInput) error {
	account, err := loadAccount(ctx, srv.accountRepo, accountID)
	if err != nil {
		return err
	}

	if !srv.hasher.Check(input.CurrentPassword, account.PasswordHash) {
		return errors.Wrap(domainerrors.ErrInvalidCredentials, "current password mismatch")
	}

	if err := validation.Password("newPassword", input.NewPassword, srv.minPasswordLength); err != nil {
		return err
	}

	passwordHash, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	if _, err := applyAccountUpdate(ctx, srv.validate, srv.accountRepo, accountID, repository.AccountUpdate{
		PasswordHash: &passwordHash,
	}); err != nil {
		return err
	}

	srv.log(ctx).Info("Password changed", slog.String("account_id", accountID.String()))
	publishSecurityEvent(ctx, srv.publisher, srv.log(ctx), accountID, entity.SecurityEventPasswordChanged)

	return nil
}

func (srv *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := srv.validate.Var(email, "required,email"); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("email must be a valid email address")
	}

	account, err := srv.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrAccountNotFound) {
			return errors.Wrap(err, "failed to look up account for password reset")
		}
		if srv.revealUnknownResetEmail {
			return errors.Wrap(domainerrors.ErrAccountNotFound, "password reset")
		}

		srv.log(ctx).Info("Password reset requested for unknown email")

		return nil
	}

	now := srv.now()
	request := &entity.PasswordResetRequest{
		ID:        uuid.New(),
		AccountID: account.ID,
		Email:     account.Email,
		ExpiresAt: now.Add(srv.resetTokens.TTL()),
		CreatedAt: now,
	}

	token, tokenHash, err := srv.resetTokens.Issue(service.ResetClaims{
		RequestID: request.ID,
		AccountID: account.ID,
		Email:     account.Email,
		ExpiresAt: request.ExpiresAt,
	})
	if err != nil {
		return errors.Wrap(err, "failed to issue reset token")
	}
	request.TokenHash = tokenHash

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		resetRepo := repoFactory.PasswordResetRepo()

		if _, err := resetRepo.InvalidatePending(ctx, account.ID, now); err != nil {
			return errors.Wrap(err, "failed to invalidate previous reset requests")
		}

		return errors.Wrap(resetRepo.Create(ctx, request), "failed to store reset request")
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute password reset transaction")
	}

	resetURL, err := buildResetURL(srv.frontendURL, token, account.Email)
	if err != nil {
		return err
	}

	if err := srv.mailer.SendPasswordReset(ctx, service.PasswordResetMail{
		To:        account.Email,
		Name:      account.Name,
		ResetURL:  resetURL,
		ExpiresIn: srv.resetTokens.TTL(),
	}); err != nil {
		srv.log(ctx).Error("Failed to send password reset mail",
			slog.String("account_id", account.ID.String()),
			slog.Any("error", err),
		)

		return errors.Wrap(domainerrors.ErrUpstreamFailure, "send password reset mail")
	}

	srv.log(ctx).Info("Password reset mail sent", slog.String("account_id", account.ID.String()))

	return nil
}

func (srv *authService) ConsumePasswordReset(ctx context.Context, input usecase.ResetPasswordInput) error {
	if err := srv.validate.Struct(input); err != nil {
		return validation.Error(err)
	}
	if err := validation.Password("newPassword", input.NewPassword, srv.minPasswordLength); err != nil {
		return err
	}

	claims, err := srv.resetTokens.Parse(input.Token)
	if err != nil {
		srv.log(ctx).Warn("Rejected reset token", slog.Any("error", err))

		return errors.Wrap(domainerrors.ErrInvalidOrExpiredToken, "parse reset token")
	}

	request, err := srv.resetRepo.FindByTokenHash(ctx, srv.resetTokens.Hash(input.Token))
	if err != nil {
		if errors.Is(err, repository.ErrResetRequestNotFound) {
			return errors.Wrap(domainerrors.ErrInvalidOrExpiredToken, "unknown reset token")
		}

		return errors.Wrap(err, "failed to load reset request")
	}

	now := srv.now()
	if !request.Usable(now) ||
		request.Email != input.Email ||
		request.AccountID != claims.AccountID ||
		request.ID != claims.RequestID {
		return errors.Wrap(domainerrors.ErrInvalidOrExpiredToken, "reset request not usable")
	}

	passwordHash, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		consumed, err := repoFactory.PasswordResetRepo().MarkConsumed(ctx, request.ID, now)
		if err != nil {
			return errors.Wrap(err, "failed to consume reset request")
		}
		if !consumed {
			return errors.Wrap(domainerrors.ErrInvalidOrExpiredToken, "reset token already used")
		}

		_, err = applyAccountUpdate(ctx, srv.validate, repoFactory.AccountRepo(), request.AccountID, repository.AccountUpdate{
			PasswordHash: &passwordHash,
		})

		return err
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute password reset")
	}

	removed := srv.sessions.DestroyAccount(ctx, request.AccountID)
	srv.log(ctx).Info("Password reset completed",
		slog.String("account_id", request.AccountID.String()),
		slog.Int("sessions_removed", removed),
	)
	publishSecurityEvent(ctx, srv.publisher, srv.log(ctx), request.AccountID, entity.SecurityEventPasswordReset)

	return nil
}

// buildResetURL points at the frontend reset page with token and email in the query.
func buildResetURL(frontendURL, token, email string) (string, error) {
	u, err := url.Parse(frontendURL)
	if err != nil {
		return "", errors.Wrap(err, "invalid app.frontendURL")
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/reset-password"
	u.RawQuery = url.Values{"token": {token}, "email": {email}}.Encode()

	return u.String(), nil
}
