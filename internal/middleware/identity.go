package middleware

// identity.go holds the context keys written by the authentication
// middleware and helpers for reading them back in handlers and other
// middleware.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-api/internal/model"
	"github.com/iliyamo/garage-api/internal/utils"
)

const (
	ctxIdentity = "identity"
	ctxUserID   = "user_id"
	ctxRole     = "role"
)

func setIdentity(c echo.Context, id utils.Identity) {
	c.Set(ctxIdentity, id)
	c.Set(ctxUserID, id.UserID)
	c.Set(ctxRole, id.Role)
}

// IdentityFrom returns the verified identity of the caller, if any.
func IdentityFrom(c echo.Context) (utils.Identity, bool) {
	id, ok := c.Get(ctxIdentity).(utils.Identity)
	return id, ok
}

// IsAdmin reports whether the caller holds the admin role.
func IsAdmin(c echo.Context) bool {
	id, ok := IdentityFrom(c)
	return ok && id.Role == model.RoleAdmin
}

// userID extracts a printable user identifier for logs and rate keys.  It
// returns "anon" when no user is authenticated.
func userID(c echo.Context) string {
	if id, ok := IdentityFrom(c); ok {
		return strconv.FormatUint(id.UserID, 10)
	}
	return "anon"
}
