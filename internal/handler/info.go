package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-api/internal/config"
	"github.com/iliyamo/garage-api/internal/middleware"
)

// Protected greets any authenticated caller.
func Protected(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.ErrUnauthorized
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Welcome user #%d, your role is %s. This is a protected route!", id.UserID, id.Role),
	})
}

// Admin is the admin-only greeting.
func Admin(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "Welcome Admin! This is an admin-only route."})
}

// Info reports the application name and version.  Nothing about the
// database or runtime is disclosed.
func Info(cfg config.Config) echo.HandlerFunc {
	body := echo.Map{"appName": cfg.AppName, "appVersion": cfg.Version}
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, body)
	}
}
