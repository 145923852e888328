package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/garage-api/internal/model"
	"github.com/iliyamo/garage-api/internal/utils"
)

type stubVerifier map[string]utils.Identity

func (s stubVerifier) Verify(raw string) (utils.Identity, error) {
	if id, ok := s[raw]; ok {
		return id, nil
	}
	return utils.Identity{}, utils.ErrInvalidToken
}

var verifier = stubVerifier{
	"user-token":  {UserID: 1, Role: model.RoleUser},
	"admin-token": {UserID: 2, Role: model.RoleAdmin},
}

func newCtx(method, target, auth string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected *echo.HTTPError, got %v", err)
	return he.Code
}

func ok(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestJWTAuth(t *testing.T) {
	mw := JWTAuth(verifier)

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"other scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"invalid", "Bearer forged", http.StatusForbidden},
		{"valid", "Bearer user-token", http.StatusOK},
		{"scheme is case insensitive", "bearer admin-token", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newCtx(http.MethodGet, "/api/protected", tc.header)
			err := mw(ok)(c)
			if tc.code == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
				_, found := IdentityFrom(c)
				assert.True(t, found)
				return
			}
			assert.Equal(t, tc.code, httpCode(t, err))
			_, found := IdentityFrom(c)
			assert.False(t, found)
		})
	}
}

func TestOptionalJWT(t *testing.T) {
	mw := OptionalJWT(verifier)

	c, _ := newCtx(http.MethodPost, "/api/auth/register", "")
	require.NoError(t, mw(ok)(c))
	_, found := IdentityFrom(c)
	assert.False(t, found)

	c, _ = newCtx(http.MethodPost, "/api/auth/register", "Bearer admin-token")
	require.NoError(t, mw(ok)(c))
	assert.True(t, IsAdmin(c))

	c, _ = newCtx(http.MethodPost, "/api/auth/register", "Bearer forged")
	assert.Equal(t, http.StatusForbidden, httpCode(t, mw(ok)(c)))
}

// For every role R and allowed set A, access is granted iff R is in A.
func TestRequireRoleGrantsOnlyListedRoles(t *testing.T) {
	allRoles := []model.Role{model.RoleUser, model.RoleAdmin}
	sets := [][]model.Role{
		{},
		{model.RoleUser},
		{model.RoleAdmin},
		{model.RoleUser, model.RoleAdmin},
	}
	for _, allowed := range sets {
		mw := RequireRole(allowed...)
		for _, role := range allRoles {
			c, _ := newCtx(http.MethodGet, "/", "")
			setIdentity(c, utils.Identity{UserID: 9, Role: role, ExpiresAt: time.Now().Add(time.Hour)})
			err := mw(ok)(c)

			member := false
			for _, a := range allowed {
				member = member || a == role
			}
			if member {
				assert.NoError(t, err, "role %s set %v", role, allowed)
			} else {
				assert.Equal(t, http.StatusForbidden, httpCode(t, err), "role %s set %v", role, allowed)
			}
		}
	}
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	c, _ := newCtx(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusUnauthorized, httpCode(t, RequireRole(model.RoleAdmin)(ok)(c)))
}

func TestRequireRolePanicsOnUnknownRole(t *testing.T) {
	assert.Panics(t, func() { RequireRole("Admin") })
}

func TestChainedGate(t *testing.T) {
	h := JWTAuth(verifier)(RequireRole(model.RoleAdmin)(ok))

	c, _ := newCtx(http.MethodGet, "/api/admin", "Bearer user-token")
	assert.Equal(t, http.StatusForbidden, httpCode(t, h(c)))

	c, rec := newCtx(http.MethodGet, "/api/admin", "Bearer admin-token")
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", userID(c))
}
