// Package handler contains the HTTP handlers for the API.
package handler

import (
	"log/slog"
	"net/http"

	"folio/internal/delivery/api/middleware"
	"folio/internal/delivery/api/response"
	domainerrors "folio/internal/domain/errors"
	"folio/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC  usecase.AuthUsecase
	Session *middleware.SessionMiddleware
	Logger  *slog.Logger
}

// AuthHandler serves sign-up, sign-in, two-factor and password recovery.
type AuthHandler struct {
	authUC  usecase.AuthUsecase
	session *middleware.SessionMiddleware
	logger  *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC:  params.AuthUC,
		session: params.Session,
		logger:  params.Logger,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

type LoginRequest struct {
	Email         string `json:"email" validate:"required"`
	Password      string `json:"password" validate:"required"`
	TwoFactorCode string `json:"twoFactorCode"`
}

// LoginChallenge asks the client to repeat the login with a one-time code.
type LoginChallenge struct {
	RequiresTwoFactor bool `json:"requiresTwoFactor"`
}

type VerifyTwoFactorRequest struct {
	Token  string `json:"token" validate:"required,numeric,len=6"`
	Secret string `json:"secret" validate:"required,totpsecret"`
}

// TwoFactorSetupResponse is shown once while the user scans the code.
type TwoFactorSetupResponse struct {
	Secret         string `json:"secret"`
	QRCode         string `json:"qrCode"`
	ManualEntryKey string `json:"manualEntryKey"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// bindAndValidate decodes the JSON body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errors.Wrap(domainerrors.ErrValidationFailed.WithDetails("Invalid request body"), err.Error())
	}

	return c.Validate(req)
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authUC.Register(c.Request().Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.session.SetCookie(c, result.Session)

	return response.Success(c, http.StatusCreated, result.Account.PublicView())
}

// Login handles POST /auth/login. A pending second factor is a 200 answer, not an error.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authUC.Login(c.Request().Context(), usecase.LoginInput{
		Email:         req.Email,
		Password:      req.Password,
		TwoFactorCode: req.TwoFactorCode,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if result.RequiresTwoFactor {
		return response.Success(c, http.StatusOK, LoginChallenge{RequiresTwoFactor: true})
	}

	h.session.SetCookie(c, result.Session)

	return response.Success(c, http.StatusOK, result.Account.PublicView())
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authUC.Logout(c.Request().Context(), h.session.Token(c)); err != nil {
		return errors.WithStack(err)
	}

	h.session.ClearCookie(c)

	return response.OK(c)
}

// CurrentUser handles GET /auth/user.
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	account, err := middleware.GetAccount(c)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newUserResponse(account))
}

// SetupTwoFactor handles POST /auth/setup-2fa.
func (h *AuthHandler) SetupTwoFactor(c echo.Context) error {
	account, err := middleware.GetAccount(c)
	if err != nil {
		return err
	}

	setup, err := h.authUC.SetupTwoFactor(c.Request().Context(), account.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, TwoFactorSetupResponse{
		Secret:         setup.Secret,
		QRCode:         setup.QRCode,
		ManualEntryKey: setup.ManualEntryKey,
	})
}

// VerifyTwoFactor handles POST /auth/verify-2fa.
func (h *AuthHandler) VerifyTwoFactor(c echo.Context) error {
	account, err := middleware.GetAccount(c)
	if err != nil {
		return err
	}

	var req VerifyTwoFactorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authUC.VerifyAndEnableTwoFactor(c.Request().Context(), account.ID, req.Secret, req.Token); err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c)
}

// DisableTwoFactor handles POST /auth/disable-2fa.
func (h *AuthHandler) DisableTwoFactor(c echo.Context) error {
	account, err := middleware.GetAccount(c)
	if err != nil {
		return err
	}

	if err := h.authUC.DisableTwoFactor(c.Request().Context(), account.ID); err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c)
}

// ForgotPassword handles POST /auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authUC.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c)
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authUC.ConsumePasswordReset(c.Request().Context(), usecase.ResetPasswordInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
		Email:       req.Email,
	}); err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c)
}

// ChangePassword handles POST /auth/change-password.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	account, err := middleware.GetAccount(c)
	if err != nil {
		return err
	}

	var req ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authUC.ChangePassword(c.Request().Context(), account.ID, usecase.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c)
}
