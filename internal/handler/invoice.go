package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-api/internal/middleware"
	"github.com/iliyamo/garage-api/internal/model"
	"github.com/iliyamo/garage-api/internal/queue"
	"github.com/iliyamo/garage-api/internal/repository"
)

// InvoiceEvents receives invoice events after the write has committed.
// *service.Publisher satisfies it.
type InvoiceEvents interface {
	PublishAsync(ev queue.InvoiceEvent)
}

// InvoiceHandler serves /api/invoices.
type InvoiceHandler struct {
	Invoices *repository.InvoiceRepo
	Events   InvoiceEvents
}

func NewInvoiceHandler(r *repository.InvoiceRepo, events InvoiceEvents) *InvoiceHandler {
	return &InvoiceHandler{Invoices: r, Events: events}
}

type invoiceItemReq struct {
	ServiceID uint64 `json:"service_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0,lte=1000"`
}

type invoiceReq struct {
	CustomerID uint64           `json:"customer_id" validate:"required"`
	VehicleID  uint64           `json:"vehicle_id" validate:"required"`
	Items      []invoiceItemReq `json:"items" validate:"required,min=1,max=100,dive"`
}

type statusReq struct {
	Status string `json:"status" validate:"required,oneof=pending paid cancelled"`
}

type invoiceCreatedResp struct {
	Message string `json:"message"`
	model.Invoice
}

func (h *InvoiceHandler) publish(c echo.Context, ev queue.InvoiceEvent) {
	if h.Events == nil {
		return
	}
	if id, ok := middleware.IdentityFrom(c); ok {
		ev.ActorID = id.UserID
	}
	ev.OccurredAt = time.Now().UTC()
	h.Events.PublishAsync(ev)
}

func (h *InvoiceHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Invoices.List(ctx)
	if err != nil {
		return serverError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InvoiceHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	inv, err := h.Invoices.Get(ctx, id)
	if err != nil {
		return invoiceErrors.storeError(err)
	}
	return c.JSON(http.StatusOK, inv)
}

// Create prices the items from the current catalogue and stores the
// invoice atomically.  Any unknown service aborts the whole invoice.
func (h *InvoiceHandler) Create(c echo.Context) error {
	var req invoiceReq
	if err := bind(c, &req); err != nil {
		return err
	}
	in := repository.NewInvoice{CustomerID: req.CustomerID, VehicleID: req.VehicleID}
	for _, it := range req.Items {
		in.Items = append(in.Items, repository.InvoiceLine{ServiceID: it.ServiceID, Quantity: it.Quantity})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()
	inv, err := h.Invoices.Create(ctx, in)
	if err != nil {
		return invoiceErrors.storeError(err)
	}
	h.publish(c, queue.InvoiceEvent{
		Type:        queue.InvoiceCreated,
		InvoiceID:   inv.ID,
		CustomerID:  inv.CustomerID,
		VehicleID:   inv.VehicleID,
		Status:      string(inv.Status),
		TotalAmount: inv.TotalAmount,
		ItemCount:   len(inv.Items),
	})
	return c.JSON(http.StatusCreated, invoiceCreatedResp{Message: "Invoice created successfully", Invoice: inv})
}

// UpdateStatus moves an invoice to pending, paid or cancelled.
func (h *InvoiceHandler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req statusReq
	if err := bind(c, &req); err != nil {
		return err
	}
	status, err := model.ParseInvoiceStatus(req.Status)
	if err != nil {
		return badRequest("status must be one of: pending, paid, cancelled")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Invoices.UpdateStatus(ctx, id, status); err != nil {
		return invoiceErrors.storeError(err)
	}
	h.publish(c, queue.InvoiceEvent{Type: queue.InvoiceStatusChanged, InvoiceID: id, Status: string(status)})
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}

func (h *InvoiceHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Invoices.Delete(ctx, id); err != nil {
		return invoiceErrors.storeError(err)
	}
	h.publish(c, queue.InvoiceEvent{Type: queue.InvoiceDeleted, InvoiceID: id})
	return c.JSON(http.StatusOK, deleted("Invoice", id))
}
