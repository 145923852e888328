package router // package router wires middleware and routes onto an echo instance

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/garage-api/internal/config"
	"github.com/iliyamo/garage-api/internal/docs"
	"github.com/iliyamo/garage-api/internal/handler"
	"github.com/iliyamo/garage-api/internal/logger"
	"github.com/iliyamo/garage-api/internal/middleware"
	"github.com/iliyamo/garage-api/internal/repository"
	"github.com/iliyamo/garage-api/internal/utils"
)

// Deps are the process-wide collaborators the HTTP layer needs.  Redis,
// LoginLimiter, Throttle and Events are optional.
type Deps struct {
	Cfg          config.Config
	Log          *logger.Logger
	DB           *sqlx.DB
	Tokens       *utils.TokenService
	Redis        *redis.Client
	LoginLimiter middleware.FixedWindowLimiter
	Throttle     *middleware.ClientThrottle
	Events       handler.InvoiceEvents
}

// New builds the echo instance with global middleware and every route.
func New(d Deps) (*echo.Echo, error) {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.LoginLimiter == nil {
		d.LoginLimiter = middleware.NewMemoryLimiter(d.Cfg.LoginLimit.Max, d.Cfg.LoginLimit.Window)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = ErrorHandler(d.Log)
	if d.Cfg.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableErrorHandler: true,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			d.Log.WithComponent("recover").Errorw("panic recovered", "error", err, "stack", string(stack))
			return err
		},
	}))
	if d.Cfg.BodyLimit != "" {
		e.Use(echomw.BodyLimit(d.Cfg.BodyLimit))
	}
	// echo's CORS middleware allows every origin when the list is empty,
	// so it is only installed for an explicit allowlist.
	if len(d.Cfg.CORSAllowOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: d.Cfg.CORSAllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
		}))
	}
	if d.Throttle != nil {
		e.Use(d.Throttle.Middleware())
	}
	e.Use(middleware.Sanitize())

	RegisterRoutes(e, d.DB)
	if d.Cfg.EnableSwagger {
		if err := docs.Register(e); err != nil {
			return nil, err
		}
	}

	users := repository.NewUserRepo(d.DB)
	RegisterAuth(e, handler.NewAuthHandler(d.Cfg, users, d.Tokens), d.Tokens, middleware.LoginRateLimit(d.LoginLimiter, d.Log))

	serviceCache := middleware.NewResponseCache(d.Cfg.Cache, d.Redis, "services", d.Log)
	RegisterResources(e, d.Tokens, Handlers{
		Customers: handler.NewCustomerHandler(repository.NewCustomerRepo(d.DB)),
		Vehicles:  handler.NewVehicleHandler(repository.NewVehicleRepo(d.DB)),
		Services:  handler.NewServiceHandler(repository.NewServiceRepo(d.DB), serviceCache, d.Log),
		Invoices:  handler.NewInvoiceHandler(repository.NewInvoiceRepo(d.DB), d.Events),
		Feedback:  handler.NewFeedbackHandler(repository.NewFeedbackRepo(d.DB)),
		Users:     handler.NewUserHandler(users),
	}, serviceCache)
	RegisterInfo(e, d.Cfg, d.Tokens)
	return e, nil
}

// ErrorHandler renders every error as {"message": ...}.  Messages of 5xx
// responses are replaced by a fixed text; the real cause is only logged.
func ErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	log = log.WithComponent("http")
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := handler.ServerErrorMessage
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if code < http.StatusInternalServerError {
				if s, ok := he.Message.(string); ok {
					msg = s
				} else {
					msg = http.StatusText(code)
				}
			}
		}
		if code >= http.StatusInternalServerError {
			cause := err
			if he != nil && he.Internal != nil {
				cause = he.Internal
			}
			log.Errorw("server error",
				"error", cause,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID))
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, echo.Map{"message": msg})
		}
		if werr != nil {
			log.Warnw("writing error response failed", "error", werr)
		}
	}
}

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/", handler.Welcome)
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
}

// RegisterAuth registers the /api/auth routes.  Registration reads an
// optional token so admins can create other admins; login is rate limited.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, tokens middleware.TokenVerifier, loginLimit echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register, middleware.OptionalJWT(tokens))
	g.POST("/login", a.Login, loginLimit)
	g.GET("/me", a.Me, middleware.JWTAuth(tokens), middleware.RequireRole(anyRole...))
}
