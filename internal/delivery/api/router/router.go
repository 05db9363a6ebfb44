// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"folio/internal/delivery/api/middleware"
	"folio/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler       *handler.AuthHandler
	AccountHandler    *handler.AccountHandler
	SessionMiddleware *middleware.SessionMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler       *handler.AuthHandler
	accountHandler    *handler.AccountHandler
	sessionMiddleware *middleware.SessionMiddleware
}

// NewRouter is the constructor for the Router.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:       params.AuthHandler,
		accountHandler:    params.AccountHandler,
		sessionMiddleware: params.SessionMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/forgot-password", r.authHandler.ForgotPassword)
		authGroup.POST("/reset-password", r.authHandler.ResetPassword)
	}

	// Routes below require a live session cookie.
	sessionGroup := authGroup.Group("", r.sessionMiddleware.Authenticate)
	{
		sessionGroup.POST("/logout", r.authHandler.Logout)
		sessionGroup.GET("/user", r.authHandler.CurrentUser)

		sessionGroup.POST("/setup-2fa", r.authHandler.SetupTwoFactor)
		sessionGroup.POST("/verify-2fa", r.authHandler.VerifyTwoFactor)
		sessionGroup.POST("/disable-2fa", r.authHandler.DisableTwoFactor)
		sessionGroup.POST("/change-password", r.authHandler.ChangePassword)

		sessionGroup.PUT("/update-profile", r.accountHandler.UpdateProfile)
		sessionGroup.POST("/save-tel-info", r.accountHandler.SaveTelegram)
		sessionGroup.POST("/telegram-message-disable", r.accountHandler.DisableTelegram)
		sessionGroup.POST("/send-telegram-message", r.accountHandler.SendTelegramMessage)
	}
}
