package context

import (
	"folio/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// KeyAccount is the echo.Context key of the signed-in account.
const KeyAccount ContextKey = "account"

// SetAccount stores the account resolved from the session cookie.
func SetAccount(c echo.Context, account *entity.Account) {
	c.Set(string(KeyAccount), account)
}

// GetAccount returns the signed-in account, if the session middleware ran.
func GetAccount(c echo.Context) (*entity.Account, bool) {
	account, ok := c.Get(string(KeyAccount)).(*entity.Account)

	return account, ok && account != nil
}
