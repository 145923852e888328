package model

import (
	"errors"
	"math"
	"strings"
	"time"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "pending"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

var ErrUnknownInvoiceStatus = errors.New("unknown invoice status")

// ParseInvoiceStatus maps a raw string onto the status enumeration.
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	switch InvoiceStatus(strings.TrimSpace(s)) {
	case InvoicePending:
		return InvoicePending, nil
	case InvoicePaid:
		return InvoicePaid, nil
	case InvoiceCancelled:
		return InvoiceCancelled, nil
	}
	return "", ErrUnknownInvoiceStatus
}

// Invoice mirrors the `invoices` table.  TotalAmount is derived from the
// items at creation time and never recomputed afterwards.
type Invoice struct {
	ID          uint64        `db:"id" json:"id"`
	CustomerID  uint64        `db:"customer_id" json:"customer_id"`
	VehicleID   uint64        `db:"vehicle_id" json:"vehicle_id"`
	InvoiceDate time.Time     `db:"invoice_date" json:"invoice_date"`
	TotalAmount float64       `db:"total_amount" json:"total_amount"`
	Status      InvoiceStatus `db:"status" json:"status"`
	Items       []InvoiceItem `db:"-" json:"items,omitempty"`
}

// InvoiceItem mirrors `invoice_items`.  UnitPrice is a snapshot of the
// service price observed when the invoice was created.
type InvoiceItem struct {
	ID          uint64  `db:"id" json:"item_id"`
	InvoiceID   uint64  `db:"invoice_id" json:"invoice_id"`
	ServiceID   uint64  `db:"service_id" json:"service_id"`
	ServiceName string  `db:"service_name" json:"service_name"`
	Quantity    int     `db:"quantity" json:"quantity"`
	UnitPrice   float64 `db:"unit_price" json:"unit_price"`
}

// InvoiceSummary is the listing projection joined with customer and vehicle.
type InvoiceSummary struct {
	ID                  uint64        `db:"id" json:"id"`
	InvoiceDate         time.Time     `db:"invoice_date" json:"invoice_date"`
	TotalAmount         float64       `db:"total_amount" json:"total_amount"`
	Status              InvoiceStatus `db:"status" json:"status"`
	CustomerFirstName   string        `db:"customer_first_name" json:"customer_first_name"`
	CustomerLastName    string        `db:"customer_last_name" json:"customer_last_name"`
	VehicleLicensePlate string        `db:"vehicle_license_plate" json:"vehicle_license_plate"`
}

// Largest amounts the schema can store: prices are DECIMAL(10,2) and
// invoice totals DECIMAL(12,2).
const (
	MaxPriceCents int64 = 9_999_999_999
	MaxTotalCents int64 = 999_999_999_999
)

// Cents converts a decimal amount to integer cents, rounding half away
// from zero.  All totals are accumulated in cents.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents is the inverse of Cents.
func FromCents(c int64) float64 {
	return float64(c) / 100
}
