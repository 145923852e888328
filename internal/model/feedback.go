package model

import "time"

// Feedback mirrors the `feedback` table.  SubmittedBy records the user
// account that created the row and scopes read access for non-admins.
type Feedback struct {
	ID           uint64    `db:"id" json:"id"`
	CustomerID   uint64    `db:"customer_id" json:"customer_id"`
	VehicleID    uint64    `db:"vehicle_id" json:"vehicle_id"`
	SubmittedBy  uint64    `db:"submitted_by" json:"submitted_by"`
	Rating       int       `db:"rating" json:"rating"`
	Comments     string    `db:"comments" json:"comments"`
	FeedbackDate time.Time `db:"feedback_date" json:"feedback_date"`
}

// FeedbackDetail joins a feedback row with customer and vehicle labels.
type FeedbackDetail struct {
	Feedback
	CustomerFirstName   string `db:"customer_first_name" json:"customer_first_name"`
	CustomerLastName    string `db:"customer_last_name" json:"customer_last_name"`
	VehicleLicensePlate string `db:"vehicle_license_plate" json:"vehicle_license_plate"`
}
