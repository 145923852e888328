package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-api/internal/model"
	"github.com/iliyamo/garage-api/internal/repository"
)

// CustomerHandler serves /api/customers.
type CustomerHandler struct {
	Customers *repository.CustomerRepo
}

func NewCustomerHandler(r *repository.CustomerRepo) *CustomerHandler {
	return &CustomerHandler{Customers: r}
}

type customerReq struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Phone     string `json:"phone" validate:"max=30"`
}

func (r *customerReq) normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r customerReq) model(id uint64) model.Customer {
	return model.Customer{ID: id, FirstName: r.FirstName, LastName: r.LastName, Email: r.Email, Phone: r.Phone}
}

func (h *CustomerHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Customers.List(ctx)
	if err != nil {
		return serverError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CustomerHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	cust, err := h.Customers.Get(ctx, id)
	if err != nil {
		return customerErrors.storeError(err)
	}
	return c.JSON(http.StatusOK, cust)
}

func (h *CustomerHandler) Create(c echo.Context) error {
	var req customerReq
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body").SetInternal(err)
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	cust := req.model(0)
	if err := h.Customers.Create(ctx, &cust); err != nil {
		return customerErrors.storeError(err)
	}
	return c.JSON(http.StatusCreated, cust)
}

func (h *CustomerHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req customerReq
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body").SetInternal(err)
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	cust := req.model(id)
	if err := h.Customers.Update(ctx, &cust); err != nil {
		return customerErrors.storeError(err)
	}
	return c.JSON(http.StatusOK, cust)
}

func (h *CustomerHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Customers.Delete(ctx, id); err != nil {
		return customerErrors.storeError(err)
	}
	return c.JSON(http.StatusOK, deleted("Customer", id))
}

func deleted(entity string, id uint64) echo.Map {
	return echo.Map{"message": entity + " deleted successfully", "id": id}
}
