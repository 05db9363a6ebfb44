package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"folio/config"
	deliverycontext "folio/internal/delivery/context"
	"folio/internal/domain/entity"
	domainerrors "folio/internal/domain/errors"
	"folio/internal/errors"
	"folio/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// SessionMiddlewareParams holds dependencies for SessionMiddleware, injected by Fx.
type SessionMiddlewareParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Config *config.Config
}

// SessionMiddleware authenticates requests by their session cookie and owns the cookie format.
type SessionMiddleware struct {
	authUC       usecase.AuthUsecase
	cookieName   string
	secureCookie bool
}

// NewSessionMiddleware is the constructor for SessionMiddleware.
func NewSessionMiddleware(params SessionMiddlewareParams) *SessionMiddleware {
	return &SessionMiddleware{
		authUC:       params.AuthUC,
		cookieName:   params.Config.Session.CookieName,
		secureCookie: params.Config.Session.SecureCookie,
	}
}

// Authenticate loads the account behind the session cookie or fails with ErrUnauthenticated.
func (m *SessionMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := m.Token(c)
		if token == "" {
			return errors.Wrap(domainerrors.ErrUnauthenticated, "missing session cookie")
		}

		ctx := c.Request().Context()
		account, err := m.authUC.CurrentAccount(ctx, token)
		if err != nil {
			return errors.WithStack(err)
		}

		deliverycontext.SetAccount(c, account)

		logger := deliverycontext.GetLogger(ctx)
		if logger != nil {
			ctx = deliverycontext.WithLogger(ctx, logger.With(slog.String("account_id", account.ID.String())))
			c.SetRequest(c.Request().WithContext(ctx))
		}

		return next(c)
	}
}

// Token returns the raw session cookie value, or "".
func (m *SessionMiddleware) Token(c echo.Context) string {
	cookie, err := c.Cookie(m.cookieName)
	if err != nil {
		return ""
	}

	return cookie.Value
}

// SetCookie attaches the session cookie for a freshly created session.
func (m *SessionMiddleware) SetCookie(c echo.Context, session *entity.Session) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie in the browser.
func (m *SessionMiddleware) ClearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetAccount returns the account stored by Authenticate.
func GetAccount(c echo.Context) (*entity.Account, error) {
	account, ok := deliverycontext.GetAccount(c)
	if !ok {
		return nil, errors.Wrap(domainerrors.ErrUnauthenticated, "no account in context")
	}

	return account, nil
}
