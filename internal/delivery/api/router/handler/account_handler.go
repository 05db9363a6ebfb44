package handler

import (
	"log/slog"
	"net/http"

	"folio/internal/delivery/api/middleware"
	"folio/internal/delivery/api/response"
	"folio/internal/domain/entity"
	"folio/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// AccountHandlerParams holds dependencies for AccountHandler, injected by Fx.
type AccountHandlerParams struct {
	fx.In

	AccountUC usecase.AccountUsecase
	Logger    *slog.Logger
}

// AccountHandler serves profile and Telegram settings of the signed-in account.
type AccountHandler struct {
	accountUC usecase.AccountUsecase
	logger    *slog.Logger
}

// NewAccountHandler is the constructor for AccountHandler
func NewAccountHandler(params AccountHandlerParams) *AccountHandler {
	return &AccountHandler{
		accountUC: params.AccountUC,
		logger:    params.Logger,
	}
}

// TelegramStatus never includes the bot token.
type TelegramStatus struct {
	Enabled bool   `json:"enabled"`
	ChatID  string `json:"chatId,omitempty"`
}

// UserResponse is the body of GET /auth/user.
type UserResponse struct {
	ID               uuid.UUID      `json:"id"`
	Email            string         `json:"email"`
	Name             string         `json:"name"`
	TwoFactorEnabled bool           `json:"twoFactorEnabled"`
	Telegram         TelegramStatus `json:"telegram"`
}

func newUserResponse(account *entity.Account) UserResponse {
	view := account.PublicView()

	return UserResponse{
		ID:               view.ID,
		Email:            view.Email,
		Name:             view.Name,
		TwoFactorEnabled: view.TwoFactorEnabled,
		Telegram: TelegramStatus{
			Enabled: account.Telegram.Usable(),
			ChatID:  account.Telegram.ChatID,
		},
	}
}

type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type SaveTelegramRequest struct {
	Token  string `json:"token" validate:"required"`
	ChatID string `json:"chatid" validate:"required"`
}

type SendTelegramMessageRequest struct {
	Message string `json:"message" validate:"required"`
}

// UpdateProfile handles PUT /auth/update-profile.
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	account, err := middleware.GetAccount(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.accountUC.UpdateProfile(c.Request().Context(), account.ID, usecase.ProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, updated.PublicView())
}

// SaveTelegram handles POST /auth/save-tel-info.
func (h *AccountHandler) SaveTelegram(c echo.Context) error {
	account, err := middleware.GetAccount(c)
	if err != nil {
		return err
	}

	var req SaveTelegramRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.accountUC.LinkTelegram(c.Request().Context(), account.ID, usecase.LinkTelegramInput{
		Token:  req.Token,
		ChatID: req.ChatID,
	}); err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c)
}

// DisableTelegram handles POST /auth/telegram-message-disable.
func (h *AccountHandler) DisableTelegram(c echo.Context) error {
	account, err := middleware.GetAccount(c)
	if err != nil {
		return err
	}

	if err := h.accountUC.DisableTelegram(c.Request().Context(), account.ID); err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c)
}

// SendTelegramMessage handles POST /auth/send-telegram-message.
func (h *AccountHandler) SendTelegramMessage(c echo.Context) error {
	account, err := middleware.GetAccount(c)
	if err != nil {
		return err
	}

	var req SendTelegramMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.accountUC.SendTelegramMessage(c.Request().Context(), account.ID, req.Message); err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c)
}
