package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/garage-api/internal/model"
)

// InvoiceLine is one requested item of a new invoice.
type InvoiceLine struct {
	ServiceID uint64
	Quantity  int
}

// NewInvoice is the input to InvoiceRepo.Create.
type NewInvoice struct {
	CustomerID uint64
	VehicleID  uint64
	Items      []InvoiceLine
}

// InvoiceRepo persists invoices and their items.
type InvoiceRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewInvoiceRepo(db *sqlx.DB) *InvoiceRepo {
	return &InvoiceRepo{db: db, now: time.Now}
}

const invoiceSummarySelect = `SELECT i.id, i.invoice_date, i.total_amount, i.status,
	       c.first_name AS customer_first_name, c.last_name AS customer_last_name,
	       v.license_plate AS vehicle_license_plate
	FROM invoices i
	JOIN customers c ON i.customer_id = c.id
	JOIN vehicles v ON i.vehicle_id = v.id`

// List returns invoice summaries, newest first.
func (r *InvoiceRepo) List(ctx context.Context) ([]model.InvoiceSummary, error) {
	out := []model.InvoiceSummary{}
	err := r.db.SelectContext(ctx, &out, invoiceSummarySelect+" ORDER BY i.id DESC")
	return out, err
}

// Get loads an invoice with all of its items.
func (r *InvoiceRepo) Get(ctx context.Context, id uint64) (model.Invoice, error) {
	var inv model.Invoice
	err := r.db.GetContext(ctx, &inv, r.db.Rebind(
		"SELECT id, customer_id, vehicle_id, invoice_date, total_amount, status FROM invoices WHERE id = ?"), id)
	if err != nil {
		return model.Invoice{}, mapReadErr(err)
	}
	inv.Items = []model.InvoiceItem{}
	err = r.db.SelectContext(ctx, &inv.Items, r.db.Rebind(
		`SELECT ii.id, ii.invoice_id, ii.service_id, s.name AS service_name, ii.quantity, ii.unit_price
		 FROM invoice_items ii
		 JOIN services s ON ii.service_id = s.id
		 WHERE ii.invoice_id = ? ORDER BY ii.id`), id)
	if err != nil {
		return model.Invoice{}, err
	}
	return inv, nil
}

// Create prices every line from the current catalogue, inserts the invoice
// with status pending and inserts one item per line, all in a single
// transaction.  Unit prices are copied onto the items so later catalogue
// changes do not alter the invoice.  A missing service aborts the whole
// invoice with *ServiceNotFoundError and nothing is written.
func (r *InvoiceRepo) Create(ctx context.Context, in NewInvoice) (model.Invoice, error) {
	inv := model.Invoice{
		CustomerID:  in.CustomerID,
		VehicleID:   in.VehicleID,
		InvoiceDate: r.now().UTC().Truncate(time.Microsecond),
		Status:      model.InvoicePending,
	}
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := checkOwnership(ctx, tx, in.VehicleID, in.CustomerID); err != nil {
			return err
		}

		items := make([]model.InvoiceItem, 0, len(in.Items))
		var totalCents int64
		for _, line := range in.Items {
			var svc model.Service
			err := tx.GetContext(ctx, &svc, tx.Rebind("SELECT "+serviceCols+" FROM services WHERE id = ?"), line.ServiceID)
			if err != nil {
				if mapReadErr(err) == ErrNotFound {
					return &ServiceNotFoundError{ID: line.ServiceID}
				}
				return err
			}
			cents, qty := model.Cents(svc.Price), int64(line.Quantity)
			if cents < 0 || cents > model.MaxPriceCents {
				return ErrTotalTooLarge
			}
			// totalCents stays within MaxTotalCents, so the product cannot wrap
			if qty > 0 && cents > (model.MaxTotalCents-totalCents)/qty {
				return ErrTotalTooLarge
			}
			totalCents += cents * qty
			items = append(items, model.InvoiceItem{
				ServiceID:   svc.ID,
				ServiceName: svc.Name,
				Quantity:    line.Quantity,
				UnitPrice:   svc.Price,
			})
		}
		inv.TotalAmount = model.FromCents(totalCents)

		id, err := insertID(ctx, tx,
			"INSERT INTO invoices (customer_id, vehicle_id, invoice_date, total_amount, status) VALUES (?, ?, ?, ?, ?)",
			inv.CustomerID, inv.VehicleID, inv.InvoiceDate, inv.TotalAmount, string(inv.Status))
		if err != nil {
			return mapWriteErr(err)
		}
		inv.ID = id

		for i := range items {
			items[i].InvoiceID = id
			itemID, err := insertID(ctx, tx,
				"INSERT INTO invoice_items (invoice_id, service_id, quantity, unit_price) VALUES (?, ?, ?, ?)",
				id, items[i].ServiceID, items[i].Quantity, items[i].UnitPrice)
			if err != nil {
				return mapWriteErr(err)
			}
			items[i].ID = itemID
		}
		inv.Items = items
		return nil
	})
	if err != nil {
		return model.Invoice{}, err
	}
	return inv, nil
}

// UpdateStatus sets the status of invoice id.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id uint64, status model.InvoiceStatus) error {
	return execOne(ctx, r.db, "UPDATE invoices SET status = ? WHERE id = ?", string(status), id)
}

// Delete removes the invoice and its items atomically.
func (r *InvoiceRepo) Delete(ctx context.Context, id uint64) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM invoice_items WHERE invoice_id = ?"), id); err != nil {
			return err
		}
		return mapDeleteErr(execOne(ctx, tx, "DELETE FROM invoices WHERE id = ?", id))
	})
}
