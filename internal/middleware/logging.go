package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/garage-api/internal/logger"
)

// RequestLogger logs one line per request.  HandleError renders errors
// through the global error handler before the values are collected, so the
// logged status is the one the client received.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	log = log.WithComponent("http")
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		HandleError:  true,
		LogMethod:    true,
		LogURIPath:   true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []interface{}{
				"method", v.Method,
				"path", v.URIPath,
				"route", v.RoutePath,
				"status", v.Status,
				"duration_ms", v.Latency.Milliseconds(),
				"ip", v.RemoteIP,
				"request_id", v.RequestID,
				"user_id", userID(c),
			}
			switch {
			case v.Status >= 500:
				log.Errorw("request failed", fields...)
			case v.Status >= 400:
				log.Warnw("request rejected", fields...)
			default:
				log.Infow("request", fields...)
			}
			return nil
		},
	})
}
