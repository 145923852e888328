package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/garage-api/internal/model"
	"github.com/iliyamo/garage-api/internal/utils"
)

// UserRepo is the Credential Store.  Password digests are only selected by
// GetByUsername, which backs login; every listing omits them.
type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes password and inserts the user.  A taken username yields
// ErrDuplicate; the existing account is never modified.
func (r *UserRepo) Create(ctx context.Context, username, password string, role model.Role, cost int) (model.User, error) {
	username = strings.TrimSpace(username)
	if !role.Valid() {
		return model.User{}, model.ErrUnknownRole
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	id, err := insertID(ctx, r.DB,
		"INSERT INTO users (username, password_hash, role) VALUES (?,?,?)",
		username, hash, string(role))
	if err != nil {
		return model.User{}, mapWriteErr(err)
	}
	return model.User{ID: id, Username: username, PasswordHash: hash, Role: role}, nil
}

// GetByUsername fetches a user including the password digest.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(
		"SELECT id, username, password_hash, role FROM users WHERE username = ?"),
		strings.TrimSpace(username))
	return u, mapReadErr(err)
}

// GetByID fetches a user by id without the password digest.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind("SELECT id, username, role FROM users WHERE id = ?"), id)
	return u, mapReadErr(err)
}

// List returns all users ordered by id, without password digests.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	out := []model.User{}
	err := r.DB.SelectContext(ctx, &out, "SELECT id, username, role FROM users ORDER BY id")
	return out, err
}

// CountAdmins reports how many admin accounts exist.
func (r *UserRepo) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, r.DB.Rebind("SELECT COUNT(*) FROM users WHERE role = ?"), string(model.RoleAdmin))
	return n, err
}
