package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-api/internal/model"
)

// RequireRole admits a request only when the authenticated role is one of
// roles.  Every role, admin included, must be listed explicitly.  It must
// run after JWTAuth; without an identity the request is rejected with 401.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		if !r.Valid() {
			panic(fmt.Sprintf("middleware: RequireRole with unknown role %q", r))
		}
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return errUnauthenticated
			}
			if !allowed[id.Role] {
				return echo.NewHTTPError(http.StatusForbidden, "Access denied: Insufficient privileges")
			}
			return next(c)
		}
	}
}
