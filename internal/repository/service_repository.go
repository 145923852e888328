package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/garage-api/internal/model"
)

const serviceCols = "id, name, description, price"

// ServiceRepo persists the catalogue of billable services.
type ServiceRepo struct{ db *sqlx.DB }

func NewServiceRepo(db *sqlx.DB) *ServiceRepo { return &ServiceRepo{db: db} }

func (r *ServiceRepo) List(ctx context.Context) ([]model.Service, error) {
	out := []model.Service{}
	err := r.db.SelectContext(ctx, &out, "SELECT "+serviceCols+" FROM services ORDER BY id")
	return out, err
}

// Search matches query against name and description.  The term is bound
// as a parameter and its LIKE wildcards are escaped, so it only ever
// matches literally.  An empty query lists everything.
func (r *ServiceRepo) Search(ctx context.Context, query string) ([]model.Service, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.List(ctx)
	}
	pattern := strings.ToLower(likePattern(query))
	out := []model.Service{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(
		"SELECT "+serviceCols+" FROM services "+
			"WHERE LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!' ORDER BY id"),
		pattern, pattern)
	return out, err
}

func (r *ServiceRepo) Get(ctx context.Context, id uint64) (model.Service, error) {
	var s model.Service
	err := r.db.GetContext(ctx, &s, r.db.Rebind("SELECT "+serviceCols+" FROM services WHERE id = ?"), id)
	return s, mapReadErr(err)
}

func (r *ServiceRepo) Create(ctx context.Context, s *model.Service) error {
	id, err := insertID(ctx, r.db,
		"INSERT INTO services (name, description, price) VALUES (?, ?, ?)",
		s.Name, s.Description, s.Price)
	if err != nil {
		return mapWriteErr(err)
	}
	s.ID = id
	return nil
}

// Update changes the catalogue entry.  Existing invoice items keep the
// unit price they were created with.
func (r *ServiceRepo) Update(ctx context.Context, s *model.Service) error {
	err := execOne(ctx, r.db,
		"UPDATE services SET name = ?, description = ?, price = ? WHERE id = ?",
		s.Name, s.Description, s.Price, s.ID)
	return mapWriteErr(err)
}

// Delete removes a service.  Services billed on an invoice yield ErrInUse.
func (r *ServiceRepo) Delete(ctx context.Context, id uint64) error {
	return mapDeleteErr(execOne(ctx, r.db, "DELETE FROM services WHERE id = ?", id))
}
