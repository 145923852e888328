package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-api/internal/repository"
)

// dbTimeout bounds every store call made on behalf of a request.
const dbTimeout = 5 * time.Second

// ServerErrorMessage is the only text a 5xx response ever carries.
const ServerErrorMessage = "Server error"

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

func badRequest(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

// serverError hides err from the client; the global error handler logs it.
func serverError(err error) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusInternalServerError, ServerErrorMessage).SetInternal(err)
}

// parseID reads the :id path parameter as a positive integer.
func parseID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("Invalid id")
	}
	return id, nil
}

// InvoiceTotalTooLarge is returned when the items would overflow the total.
const InvoiceTotalTooLarge = "Invoice total exceeds the maximum of 9999999999.99"

// entityErrors names the messages used when translating store errors for
// one kind of record.
type entityErrors struct {
	name      string // "Customer", "Vehicle", ...
	duplicate string // message for a uniqueness violation
}

var (
	customerErrors = entityErrors{"Customer", "Customer with this email already exists"}
	vehicleErrors  = entityErrors{"Vehicle", "Vehicle with this license plate or VIN already exists"}
	serviceErrors  = entityErrors{"Service", "Service with this name already exists"}
	invoiceErrors  = entityErrors{"Invoice", "Invoice already exists"}
	feedbackErrors = entityErrors{"Feedback", "Feedback already exists"}
	userErrors     = entityErrors{"User", "Username already exists. Please choose another one."}
)

// storeError translates a repository error into an HTTP error.  Driver
// details stay in the internal error and never reach the client.
func (e entityErrors) storeError(err error) error {
	var svcErr *repository.ServiceNotFoundError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, e.name+" not found")
	case errors.Is(err, repository.ErrDuplicate):
		return echo.NewHTTPError(http.StatusConflict, e.duplicate).SetInternal(err)
	case errors.Is(err, repository.ErrInUse):
		return echo.NewHTTPError(http.StatusConflict, e.name+" is still referenced by other records").SetInternal(err)
	case errors.Is(err, repository.ErrTotalTooLarge):
		return badRequest(InvoiceTotalTooLarge)
	case errors.Is(err, repository.ErrVehicleMismatch):
		return badRequest("Vehicle does not belong to customer")
	case errors.Is(err, repository.ErrInvalidReference):
		return badRequest("Referenced record does not exist").SetInternal(err)
	case errors.As(err, &svcErr):
		return badRequest(fmt.Sprintf("Service with ID %d not found", svcErr.ID))
	}
	return serverError(err)
}
