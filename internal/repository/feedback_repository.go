package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/garage-api/internal/model"
)

// FeedbackScope restricts which feedback rows a caller can see.  Admins
// see everything; anyone else sees only rows they submitted.
type FeedbackScope struct {
	UserID uint64
	All    bool
}

const feedbackDetailSelect = `SELECT f.id, f.customer_id, f.vehicle_id, f.submitted_by, f.rating, f.comments, f.feedback_date,
	       c.first_name AS customer_first_name, c.last_name AS customer_last_name,
	       v.license_plate AS vehicle_license_plate
	FROM feedback f
	JOIN customers c ON f.customer_id = c.id
	JOIN vehicles v ON f.vehicle_id = v.id`

type FeedbackRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewFeedbackRepo(db *sqlx.DB) *FeedbackRepo {
	return &FeedbackRepo{db: db, now: time.Now}
}

func (r *FeedbackRepo) List(ctx context.Context, scope FeedbackScope) ([]model.FeedbackDetail, error) {
	out := []model.FeedbackDetail{}
	if scope.All {
		err := r.db.SelectContext(ctx, &out, feedbackDetailSelect+" ORDER BY f.id")
		return out, err
	}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(feedbackDetailSelect+" WHERE f.submitted_by = ? ORDER BY f.id"), scope.UserID)
	return out, err
}

// Get returns one feedback row.  Rows outside scope are reported as
// ErrNotFound so their existence is not disclosed.
func (r *FeedbackRepo) Get(ctx context.Context, id uint64, scope FeedbackScope) (model.FeedbackDetail, error) {
	var f model.FeedbackDetail
	var err error
	if scope.All {
		err = r.db.GetContext(ctx, &f, r.db.Rebind(feedbackDetailSelect+" WHERE f.id = ?"), id)
	} else {
		err = r.db.GetContext(ctx, &f, r.db.Rebind(feedbackDetailSelect+" WHERE f.id = ? AND f.submitted_by = ?"), id, scope.UserID)
	}
	return f, mapReadErr(err)
}

// Create stores f with a server assigned date after checking that the
// vehicle belongs to the customer.
func (r *FeedbackRepo) Create(ctx context.Context, f *model.Feedback) error {
	f.FeedbackDate = r.now().UTC().Truncate(time.Microsecond)
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := checkOwnership(ctx, tx, f.VehicleID, f.CustomerID); err != nil {
			return err
		}
		id, err := insertID(ctx, tx,
			"INSERT INTO feedback (customer_id, vehicle_id, submitted_by, rating, comments, feedback_date) VALUES (?, ?, ?, ?, ?, ?)",
			f.CustomerID, f.VehicleID, f.SubmittedBy, f.Rating, f.Comments, f.FeedbackDate)
		if err != nil {
			return mapWriteErr(err)
		}
		f.ID = id
		return nil
	})
}

// Update rewrites customer, vehicle, rating and comments of row f.ID.
// Submitter and date are preserved.
func (r *FeedbackRepo) Update(ctx context.Context, f *model.Feedback) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := checkOwnership(ctx, tx, f.VehicleID, f.CustomerID); err != nil {
			return err
		}
		err := execOne(ctx, tx,
			"UPDATE feedback SET customer_id = ?, vehicle_id = ?, rating = ?, comments = ? WHERE id = ?",
			f.CustomerID, f.VehicleID, f.Rating, f.Comments, f.ID)
		return mapWriteErr(err)
	})
}

func (r *FeedbackRepo) Delete(ctx context.Context, id uint64) error {
	return execOne(ctx, r.db, "DELETE FROM feedback WHERE id = ?", id)
}
