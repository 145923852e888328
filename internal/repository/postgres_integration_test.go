//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/iliyamo/garage-api/internal/config"
	"github.com/iliyamo/garage-api/internal/database"
	"github.com/iliyamo/garage-api/internal/model"
	"github.com/iliyamo/garage-api/internal/utils"
)

// TestPostgresInvoiceFlow runs the store against a real Postgres to cover
// RETURNING id, NUMERIC scanning and SQLSTATE classification.
func TestPostgresInvoiceFlow(t *testing.T) {
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("garage_test"),
		postgres.WithUsername("garage"),
		postgres.WithPassword("garage_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := database.Connect(config.DriverPostgres, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(ctx, db, nil))

	users := NewUserRepo(db)
	_, err = users.Create(ctx, "pguser", "Aa1!aaaa", model.RoleUser, utils.MinCost)
	require.NoError(t, err)
	_, err = users.Create(ctx, "pguser", "Aa1!aaaa", model.RoleUser, utils.MinCost)
	assert.ErrorIs(t, err, ErrDuplicate)

	customers, vehicles, services, invoices := NewCustomerRepo(db), NewVehicleRepo(db), NewServiceRepo(db), NewInvoiceRepo(db)
	c := model.Customer{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"}
	require.NoError(t, customers.Create(ctx, &c))
	v := model.Vehicle{CustomerID: c.ID, Make: "Toyota", Model: "Corolla", Year: 2018, LicensePlate: "PG123", VIN: "VINPG123"}
	require.NoError(t, vehicles.Create(ctx, &v))
	s1 := model.Service{Name: "Oil change", Description: "Synthetic", Price: 59.99}
	s2 := model.Service{Name: "Brake pads", Description: "Front axle", Price: 29.99}
	require.NoError(t, services.Create(ctx, &s1))
	require.NoError(t, services.Create(ctx, &s2))

	inv, err := invoices.Create(ctx, NewInvoice{
		CustomerID: c.ID, VehicleID: v.ID,
		Items: []InvoiceLine{{ServiceID: s1.ID, Quantity: 2}, {ServiceID: s2.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 149.97, inv.TotalAmount)

	stored, err := invoices.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 149.97, stored.TotalAmount)
	assert.Len(t, stored.Items, 2)

	_, err = invoices.Create(ctx, NewInvoice{CustomerID: c.ID, VehicleID: v.ID, Items: []InvoiceLine{{ServiceID: 999, Quantity: 1}}})
	var snf *ServiceNotFoundError
	assert.ErrorAs(t, err, &snf)

	assert.ErrorIs(t, customers.Delete(ctx, c.ID), ErrInUse)
}
