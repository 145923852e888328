package model

// Customer represents a row in the `customers` table.  A customer owns
// zero or more vehicles and is referenced by invoices and feedback.
type Customer struct {
	ID        uint64 `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
	Phone     string `db:"phone" json:"phone"`
}
