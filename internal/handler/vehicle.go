package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-api/internal/model"
	"github.com/iliyamo/garage-api/internal/repository"
)

// VehicleHandler serves /api/vehicles.
type VehicleHandler struct {
	Vehicles *repository.VehicleRepo
}

func NewVehicleHandler(r *repository.VehicleRepo) *VehicleHandler {
	return &VehicleHandler{Vehicles: r}
}

type vehicleReq struct {
	CustomerID   uint64 `json:"customer_id" validate:"required"`
	Make         string `json:"make" validate:"required,max=50"`
	Model        string `json:"model" validate:"required,max=50"`
	Year         int    `json:"year" validate:"required,gte=1886,lte=2100"`
	LicensePlate string `json:"license_plate" validate:"required,max=20"`
	VIN          string `json:"vin" validate:"required,max=17"`
}

func (r *vehicleReq) normalize() {
	r.Make = strings.TrimSpace(r.Make)
	r.Model = strings.TrimSpace(r.Model)
	r.LicensePlate = strings.ToUpper(strings.TrimSpace(r.LicensePlate))
	r.VIN = strings.ToUpper(strings.TrimSpace(r.VIN))
}

func (r vehicleReq) model(id uint64) model.Vehicle {
	return model.Vehicle{
		ID:           id,
		CustomerID:   r.CustomerID,
		Make:         r.Make,
		Model:        r.Model,
		Year:         r.Year,
		LicensePlate: r.LicensePlate,
		VIN:          r.VIN,
	}
}

func (h *VehicleHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Vehicles.List(ctx)
	if err != nil {
		return serverError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *VehicleHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	v, err := h.Vehicles.Get(ctx, id)
	if err != nil {
		return vehicleErrors.storeError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *VehicleHandler) Create(c echo.Context) error {
	var req vehicleReq
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body").SetInternal(err)
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	v := req.model(0)
	if err := h.Vehicles.Create(ctx, &v); err != nil {
		return vehicleErrors.storeError(err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *VehicleHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req vehicleReq
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body").SetInternal(err)
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	v := req.model(id)
	if err := h.Vehicles.Update(ctx, &v); err != nil {
		return vehicleErrors.storeError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *VehicleHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Vehicles.Delete(ctx, id); err != nil {
		return vehicleErrors.storeError(err)
	}
	return c.JSON(http.StatusOK, deleted("Vehicle", id))
}
