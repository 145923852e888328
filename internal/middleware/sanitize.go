package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-api/internal/sanitize"
)

var errInvalidInput = echo.NewHTTPError(http.StatusBadRequest, "Invalid input")

// Sanitize rejects requests whose path parameters, query string, JSON body
// or form fields contain a format directive.  It must be registered with
// e.Use so that path parameters are already resolved.  The JSON body is
// restored after inspection for the handler's binder.
func Sanitize() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := checkRequest(c); err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					return err
				}
				return errInvalidInput.WithInternal(err)
			}
			return next(c)
		}
	}
}

func checkRequest(c echo.Context) error {
	for _, p := range c.ParamValues() {
		if v, err := url.PathUnescape(p); err == nil {
			p = v
		}
		if err := sanitize.String(p); err != nil {
			return err
		}
	}
	if err := sanitize.Strings(c.QueryParams()); err != nil {
		return err
	}

	req := c.Request()
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}
	ctype := req.Header.Get(echo.HeaderContentType)
	switch {
	case strings.HasPrefix(ctype, echo.MIMEApplicationForm), strings.HasPrefix(ctype, echo.MIMEMultipartForm):
		form, err := c.FormParams()
		if err != nil {
			return err
		}
		return sanitize.Strings(form)
	default:
		// Anything else is inspected as JSON, which is what the binder
		// would accept for an empty or JSON content type.
		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
		return sanitize.JSON(body)
	}
}
