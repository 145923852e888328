package middleware // middleware contains the access control gate and other reusable HTTP middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-api/internal/utils"
)

// TokenVerifier is satisfied by *utils.TokenService.
type TokenVerifier interface {
	Verify(raw string) (utils.Identity, error)
}

var (
	errUnauthenticated = echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	errBadToken        = echo.NewHTTPError(http.StatusForbidden, "Invalid or expired token")
)

// bearerToken returns the token from an "Authorization: Bearer <token>"
// header, or "" when the header is absent or uses another scheme.
func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, raw, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(raw)
}

// JWTAuth authenticates the request.  A missing bearer token fails with
// 401; a token that does not verify fails with 403.  There is no fallback
// identity.  On success the identity is stored in the context for
// RequireRole and the handlers.
func JWTAuth(v TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
				return errUnauthenticated
			}
			id, err := v.Verify(raw)
			if err != nil {
				return errBadToken.WithInternal(err)
			}
			setIdentity(c, id)
			return next(c)
		}
	}
}

// OptionalJWT records the caller's identity when a bearer token is sent
// and lets anonymous requests through.  A token that is sent but does not
// verify still fails with 403.
func OptionalJWT(v TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return next(c)
			}
			id, err := v.Verify(raw)
			if err != nil {
				return errBadToken.WithInternal(err)
			}
			setIdentity(c, id)
			return next(c)
		}
	}
}
