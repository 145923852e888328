package model

// Vehicle represents a row in the `vehicles` table.  Every vehicle belongs
// to exactly one customer.  LicensePlate and VIN are unique.
type Vehicle struct {
	ID           uint64 `db:"id" json:"id"`
	CustomerID   uint64 `db:"customer_id" json:"customer_id"`
	Make         string `db:"make" json:"make"`
	Model        string `db:"model" json:"model"`
	Year         int    `db:"year" json:"year"`
	LicensePlate string `db:"license_plate" json:"license_plate"`
	VIN          string `db:"vin" json:"vin"`
}

// VehicleDetail is a vehicle joined with its owner's name, as returned by
// the list and detail endpoints.
type VehicleDetail struct {
	Vehicle
	CustomerFirstName string `db:"customer_first_name" json:"customer_first_name"`
	CustomerLastName  string `db:"customer_last_name" json:"customer_last_name"`
}
