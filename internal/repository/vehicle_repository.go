package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/garage-api/internal/model"
)

const vehicleDetailSelect = `SELECT v.id, v.customer_id, v.make, v.model, v.year, v.license_plate, v.vin,
	       c.first_name AS customer_first_name, c.last_name AS customer_last_name
	FROM vehicles v
	JOIN customers c ON v.customer_id = c.id`

type VehicleRepo struct{ db *sqlx.DB }

func NewVehicleRepo(db *sqlx.DB) *VehicleRepo { return &VehicleRepo{db: db} }

// List returns every vehicle joined with its owner's name.
func (r *VehicleRepo) List(ctx context.Context) ([]model.VehicleDetail, error) {
	out := []model.VehicleDetail{}
	err := r.db.SelectContext(ctx, &out, vehicleDetailSelect+" ORDER BY v.id")
	return out, err
}

func (r *VehicleRepo) Get(ctx context.Context, id uint64) (model.VehicleDetail, error) {
	var v model.VehicleDetail
	err := r.db.GetContext(ctx, &v, r.db.Rebind(vehicleDetailSelect+" WHERE v.id = ?"), id)
	return v, mapReadErr(err)
}

// Create inserts v.  An unknown customer yields ErrInvalidReference and a
// taken plate or VIN yields ErrDuplicate.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	id, err := insertID(ctx, r.db,
		"INSERT INTO vehicles (customer_id, make, model, year, license_plate, vin) VALUES (?, ?, ?, ?, ?, ?)",
		v.CustomerID, v.Make, v.Model, v.Year, v.LicensePlate, v.VIN)
	if err != nil {
		return mapWriteErr(err)
	}
	v.ID = id
	return nil
}

func (r *VehicleRepo) Update(ctx context.Context, v *model.Vehicle) error {
	err := execOne(ctx, r.db,
		"UPDATE vehicles SET customer_id = ?, make = ?, model = ?, year = ?, license_plate = ?, vin = ? WHERE id = ?",
		v.CustomerID, v.Make, v.Model, v.Year, v.LicensePlate, v.VIN, v.ID)
	return mapWriteErr(err)
}

// Delete removes a vehicle.  Vehicles referenced by invoices or feedback
// yield ErrInUse.
func (r *VehicleRepo) Delete(ctx context.Context, id uint64) error {
	return mapDeleteErr(execOne(ctx, r.db, "DELETE FROM vehicles WHERE id = ?", id))
}

// checkOwnership verifies inside q that vehicleID exists and belongs to
// customerID.
func checkOwnership(ctx context.Context, q sqlx.ExtContext, vehicleID, customerID uint64) error {
	var owner uint64
	err := sqlx.GetContext(ctx, q, &owner, q.Rebind("SELECT customer_id FROM vehicles WHERE id = ?"), vehicleID)
	if err != nil {
		if mapReadErr(err) == ErrNotFound {
			return ErrInvalidReference
		}
		return err
	}
	if owner != customerID {
		return ErrVehicleMismatch
	}
	return nil
}
