package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-api/internal/logger"
	"github.com/iliyamo/garage-api/internal/middleware"
	"github.com/iliyamo/garage-api/internal/model"
	"github.com/iliyamo/garage-api/internal/repository"
)

// ServiceHandler serves the service catalogue.  Reads may be cached, so
// every successful write drops the cached catalogue.
type ServiceHandler struct {
	Services *repository.ServiceRepo
	Cache    *middleware.ResponseCache // nil when caching is off
	Log      *logger.Logger
}

func NewServiceHandler(r *repository.ServiceRepo, cache *middleware.ResponseCache, log *logger.Logger) *ServiceHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ServiceHandler{Services: r, Cache: cache, Log: log.WithComponent("services")}
}

type serviceReq struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description string  `json:"description" validate:"max=1000"`
	Price       float64 `json:"price" validate:"gte=0.01,lte=99999999.99"` // DECIMAL(10,2)
}

func (r *serviceReq) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
}

func (r serviceReq) model(id uint64) model.Service {
	return model.Service{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Price:       model.FromCents(model.Cents(r.Price)),
	}
}

// bindService decodes, trims and only then validates, so a blank name
// cannot pass the required check.
func bindService(c echo.Context) (serviceReq, error) {
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return req, badRequest("Invalid request body").SetInternal(err)
	}
	req.normalize()
	return req, c.Validate(&req)
}

func (h *ServiceHandler) invalidate(ctx context.Context) {
	if err := h.Cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		h.Log.Warnw("service cache invalidation failed", "error", err)
	}
}

func (h *ServiceHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Services.List(ctx)
	if err != nil {
		return serverError(err)
	}
	return c.JSON(http.StatusOK, out)
}

// Search matches ?query= against name and description.
func (h *ServiceHandler) Search(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Services.Search(ctx, c.QueryParam("query"))
	if err != nil {
		return serverError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ServiceHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	s, err := h.Services.Get(ctx, id)
	if err != nil {
		return serviceErrors.storeError(err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *ServiceHandler) Create(c echo.Context) error {
	req, err := bindService(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	s := req.model(0)
	if err := h.Services.Create(ctx, &s); err != nil {
		return serviceErrors.storeError(err)
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusCreated, s)
}

func (h *ServiceHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	req, err := bindService(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	s := req.model(id)
	if err := h.Services.Update(ctx, &s); err != nil {
		return serviceErrors.storeError(err)
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusOK, s)
}

func (h *ServiceHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Services.Delete(ctx, id); err != nil {
		return serviceErrors.storeError(err)
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusOK, deleted("Service", id))
}
