package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/garage-api/internal/repository"
)

func TestStoreErrorMapping(t *testing.T) {
	driverErr := errors.New("pq: duplicate key value violates unique constraint \"customers_email_key\"")
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{repository.ErrNotFound, http.StatusNotFound, "Customer not found"},
		{fmt.Errorf("%w: %w", repository.ErrDuplicate, driverErr), http.StatusConflict, "Customer with this email already exists"},
		{fmt.Errorf("%w: %w", repository.ErrInUse, driverErr), http.StatusConflict, "Customer is still referenced by other records"},
		{repository.ErrVehicleMismatch, http.StatusBadRequest, "Vehicle does not belong to customer"},
		{fmt.Errorf("%w: %w", repository.ErrInvalidReference, driverErr), http.StatusBadRequest, "Referenced record does not exist"},
		{&repository.ServiceNotFoundError{ID: 42}, http.StatusBadRequest, "Service with ID 42 not found"},
		{repository.ErrTotalTooLarge, http.StatusBadRequest, InvoiceTotalTooLarge},
		{driverErr, http.StatusInternalServerError, ServerErrorMessage},
	}
	for _, tc := range cases {
		var he *echo.HTTPError
		require.True(t, errors.As(customerErrors.storeError(tc.err), &he))
		assert.Equal(t, tc.code, he.Code, tc.err.Error())
		assert.Equal(t, tc.msg, he.Message)
		assert.NotContains(t, fmt.Sprint(he.Message), "pq:")
	}
}

func TestParseID(t *testing.T) {
	e := echo.New()
	for raw, ok := range map[string]bool{"7": true, "0": false, "-1": false, "x": false, "1.5": false} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(raw)
		id, err := parseID(c)
		if ok {
			require.NoError(t, err)
			assert.EqualValues(t, 7, id)
		} else {
			assert.Error(t, err, raw)
		}
	}
}

func TestValidatorMessages(t *testing.T) {
	v := NewValidator()
	msg := func(i interface{}) string {
		t.Helper()
		var he *echo.HTTPError
		require.True(t, errors.As(v.Validate(i), &he))
		assert.Equal(t, http.StatusBadRequest, he.Code)
		return he.Message.(string)
	}

	assert.NoError(t, v.Validate(&feedbackReq{CustomerID: 1, VehicleID: 1, Rating: 3}))
	assert.Equal(t, "rating must be at most 5", msg(&feedbackReq{CustomerID: 1, VehicleID: 1, Rating: 6}))
	assert.Equal(t, "customer_id is required", msg(&feedbackReq{VehicleID: 1, Rating: 3}))
	assert.Equal(t, "items must contain at least 1 item(s)", msg(&invoiceReq{CustomerID: 1, VehicleID: 1, Items: []invoiceItemReq{}}))
	assert.Equal(t, "items[1].quantity must be greater than 0",
		msg(&invoiceReq{CustomerID: 1, VehicleID: 1, Items: []invoiceItemReq{{ServiceID: 1, Quantity: 1}, {ServiceID: 2}}}))
	assert.Equal(t, "status must be one of: pending, paid, cancelled", msg(&statusReq{Status: "refunded"}))
	assert.Equal(t, "price must be at least 0.01", msg(&serviceReq{Name: "x", Price: 0}))
	assert.Equal(t, "price must be at most 99999999.99", msg(&serviceReq{Name: "x", Price: 1e20}))
}
