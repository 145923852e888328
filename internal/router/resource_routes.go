package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-api/internal/config"
	"github.com/iliyamo/garage-api/internal/handler"
	"github.com/iliyamo/garage-api/internal/middleware"
	"github.com/iliyamo/garage-api/internal/model"
)

var (
	anyRole   = []model.Role{model.RoleUser, model.RoleAdmin}
	adminOnly = []model.Role{model.RoleAdmin}
)

// Handlers groups the resource handlers mounted under /api.
type Handlers struct {
	Customers *handler.CustomerHandler
	Vehicles  *handler.VehicleHandler
	Services  *handler.ServiceHandler
	Invoices  *handler.InvoiceHandler
	Feedback  *handler.FeedbackHandler
	Users     *handler.UserHandler
}

// RegisterResources registers the role-gated CRUD routes.  Every group
// authenticates first; each route then lists the roles it admits.
func RegisterResources(e *echo.Echo, tokens middleware.TokenVerifier, h Handlers, serviceCache *middleware.ResponseCache) {
	api := e.Group("/api", middleware.JWTAuth(tokens))
	admin := middleware.RequireRole(adminOnly...)
	member := middleware.RequireRole(anyRole...)

	// ---- Customers ----
	g := api.Group("/customers", admin)
	g.GET("", h.Customers.List)
	g.GET("/:id", h.Customers.Get)
	g.POST("", h.Customers.Create)
	g.PUT("/:id", h.Customers.Update)
	g.DELETE("/:id", h.Customers.Delete)

	// ---- Vehicles ----
	g = api.Group("/vehicles", admin)
	g.GET("", h.Vehicles.List)
	g.GET("/:id", h.Vehicles.Get)
	g.POST("", h.Vehicles.Create)
	g.PUT("/:id", h.Vehicles.Update)
	g.DELETE("/:id", h.Vehicles.Delete)

	// ---- Services ----
	// reads are shared by every role and served from the cache when enabled
	g = api.Group("/services")
	cached := serviceCache.Middleware()
	g.GET("", h.Services.List, member, cached)
	g.GET("/search", h.Services.Search, member, cached)
	g.GET("/:id", h.Services.Get, member, cached)
	g.POST("", h.Services.Create, admin)
	g.PUT("/:id", h.Services.Update, admin)
	g.DELETE("/:id", h.Services.Delete, admin)

	// ---- Invoices ----
	g = api.Group("/invoices", admin)
	g.GET("", h.Invoices.List)
	g.GET("/:id", h.Invoices.Get)
	g.POST("", h.Invoices.Create)
	g.PATCH("/:id/status", h.Invoices.UpdateStatus)
	g.DELETE("/:id", h.Invoices.Delete)

	// ---- Feedback ----
	// users read and submit their own rows; edits are admin work
	g = api.Group("/feedback")
	g.GET("", h.Feedback.List, member)
	g.GET("/:id", h.Feedback.Get, member)
	g.POST("", h.Feedback.Create, member)
	g.PUT("/:id", h.Feedback.Update, admin)
	g.DELETE("/:id", h.Feedback.Delete, admin)

	// ---- Users ----
	g = api.Group("/users", admin)
	g.GET("", h.Users.List)
	g.GET("/:id", h.Users.Get)
}

// RegisterInfo registers the informational routes under /api.
func RegisterInfo(e *echo.Echo, cfg config.Config, tokens middleware.TokenVerifier) {
	auth := middleware.JWTAuth(tokens)
	e.GET("/api/info", handler.Info(cfg), auth, middleware.RequireRole(anyRole...))
	e.GET("/api/protected", handler.Protected, auth, middleware.RequireRole(anyRole...))
	e.GET("/api/admin", handler.Admin, auth, middleware.RequireRole(adminOnly...))
}
