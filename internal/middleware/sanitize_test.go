package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSanitizedServer registers a few routes behind Sanitize and records
// whether the handler ran and what body it saw.
func newSanitizedServer(reached *bool, seen *string) *echo.Echo {
	e := echo.New()
	e.Use(Sanitize())
	h := func(c echo.Context) error {
		*reached = true
		b, _ := io.ReadAll(c.Request().Body)
		*seen = string(b)
		return c.NoContent(http.StatusOK)
	}
	e.POST("/api/feedback", h)
	e.PUT("/api/customers/:id", h)
	e.GET("/api/services/search", h)
	e.POST("/form", h)
	return e
}

func TestSanitizeRejectsFormatDirectives(t *testing.T) {
	cases := []struct {
		name   string
		method string
		target string
		ctype  string
		body   string
	}{
		{"json body %n", http.MethodPost, "/api/feedback", echo.MIMEApplicationJSON, `{"comments":"nice %n"}`},
		{"json nested %s", http.MethodPost, "/api/feedback", echo.MIMEApplicationJSON, `{"a":{"b":["ok","%s"]}}`},
		{"json no content type", http.MethodPost, "/api/feedback", "", `{"comments":"%x"}`},
		{"query", http.MethodGet, "/api/services/search?query=" + url.QueryEscape("%s"), "", ""},
		{"path", http.MethodPut, "/api/customers/%25n", echo.MIMEApplicationJSON, `{}`},
		{"form", http.MethodPost, "/form", echo.MIMEApplicationForm, "comments=" + url.QueryEscape("%d")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var reached bool
			var seen string
			e := newSanitizedServer(&reached, &seen)
			req := httptest.NewRequest(tc.method, tc.target, strings.NewReader(tc.body))
			if tc.ctype != "" {
				req.Header.Set(echo.HeaderContentType, tc.ctype)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, reached)
			assert.NotContains(t, rec.Body.String(), "%")
		})
	}
}

func TestSanitizePassesCleanInputAndRestoresBody(t *testing.T) {
	var reached bool
	var seen string
	e := newSanitizedServer(&reached, &seen)

	body := `{"rating":5,"comments":"100% satisfied","ok":true,"n":null}`
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
	assert.Equal(t, body, seen)
}
