package model

// Service is a billable garage operation (oil change, brake pads, ...).
// Price is always strictly positive; the handler layer enforces it.
type Service struct {
	ID          uint64  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description string  `db:"description" json:"description"`
	Price       float64 `db:"price" json:"price"`
}
