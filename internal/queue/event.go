// Package queue defines the invoice events exchanged over the message
// broker and the background consumer that records them.
package queue

import (
	"fmt"
	"time"
)

// Event types carried in InvoiceEvent.Type.
const (
	InvoiceCreated       = "invoice.created"
	InvoiceStatusChanged = "invoice.status_changed"
	InvoiceDeleted       = "invoice.deleted"
)

// InvoiceEvent is published after an invoice write commits.  It holds
// enough for the audit log without querying the database again.
type InvoiceEvent struct {
	Type        string    `json:"type"`
	InvoiceID   uint64    `json:"invoice_id"`
	CustomerID  uint64    `json:"customer_id,omitempty"`
	VehicleID   uint64    `json:"vehicle_id,omitempty"`
	Status      string    `json:"status,omitempty"`
	TotalAmount float64   `json:"total_amount,omitempty"`
	ItemCount   int       `json:"item_count,omitempty"`
	ActorID     uint64    `json:"actor_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Valid reports whether the event type is one this service produces.
func (ev InvoiceEvent) Valid() bool {
	switch ev.Type {
	case InvoiceCreated, InvoiceStatusChanged, InvoiceDeleted:
		return ev.InvoiceID != 0
	}
	return false
}

// Line renders the event as one line of the audit log.
func (ev InvoiceEvent) Line() string {
	ts := ev.OccurredAt.UTC().Format(time.RFC3339)
	switch ev.Type {
	case InvoiceCreated:
		return fmt.Sprintf("[%s] Invoice created | invoice_id=%d | customer_id=%d | vehicle_id=%d | items=%d | total=%.2f | by=%d\n",
			ts, ev.InvoiceID, ev.CustomerID, ev.VehicleID, ev.ItemCount, ev.TotalAmount, ev.ActorID)
	case InvoiceStatusChanged:
		return fmt.Sprintf("[%s] Invoice status changed | invoice_id=%d | status=%s | by=%d\n",
			ts, ev.InvoiceID, ev.Status, ev.ActorID)
	default:
		return fmt.Sprintf("[%s] Invoice deleted | invoice_id=%d | by=%d\n", ts, ev.InvoiceID, ev.ActorID)
	}
}
