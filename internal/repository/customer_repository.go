package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/garage-api/internal/model"
)

const customerCols = "id, first_name, last_name, email, phone"

type CustomerRepo struct{ db *sqlx.DB }

func NewCustomerRepo(db *sqlx.DB) *CustomerRepo { return &CustomerRepo{db: db} }

func (r *CustomerRepo) List(ctx context.Context) ([]model.Customer, error) {
	out := []model.Customer{}
	err := r.db.SelectContext(ctx, &out, "SELECT "+customerCols+" FROM customers ORDER BY id")
	return out, err
}

func (r *CustomerRepo) Get(ctx context.Context, id uint64) (model.Customer, error) {
	var c model.Customer
	err := r.db.GetContext(ctx, &c, r.db.Rebind("SELECT "+customerCols+" FROM customers WHERE id = ?"), id)
	return c, mapReadErr(err)
}

// Create inserts c and fills in its ID.  A taken email yields ErrDuplicate.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	id, err := insertID(ctx, r.db,
		"INSERT INTO customers (first_name, last_name, email, phone) VALUES (?, ?, ?, ?)",
		c.FirstName, c.LastName, c.Email, c.Phone)
	if err != nil {
		return mapWriteErr(err)
	}
	c.ID = id
	return nil
}

// Update overwrites every column of the customer identified by c.ID.
func (r *CustomerRepo) Update(ctx context.Context, c *model.Customer) error {
	err := execOne(ctx, r.db,
		"UPDATE customers SET first_name = ?, last_name = ?, email = ?, phone = ? WHERE id = ?",
		c.FirstName, c.LastName, c.Email, c.Phone, c.ID)
	return mapWriteErr(err)
}

// Delete removes a customer.  Customers that still own vehicles, invoices
// or feedback yield ErrInUse.
func (r *CustomerRepo) Delete(ctx context.Context, id uint64) error {
	return mapDeleteErr(execOne(ctx, r.db, "DELETE FROM customers WHERE id = ?", id))
}
