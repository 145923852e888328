package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Queries in this package are written with ? placeholders and rebound for
// the active driver.

// insertID executes an INSERT and returns the generated primary key.
// Postgres has no LastInsertId, so the statement is extended with
// RETURNING id there.
func insertID(ctx context.Context, ext sqlx.ExtContext, query string, args ...any) (uint64, error) {
	if ext.DriverName() == "postgres" {
		var id uint64
		if err := ext.QueryRowxContext(ctx, ext.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := ext.ExecContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// execOne executes a statement that must touch exactly one row.  Zero
// affected rows are reported as ErrNotFound.
func execOne(ctx context.Context, ext sqlx.ExtContext, query string, args ...any) error {
	res, err := ext.ExecContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// likePattern escapes user input for a LIKE ... ESCAPE '!' clause and wraps
// it in wildcards so it matches anywhere.
func likePattern(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(s) + "%"
}

// withTx runs fn inside a transaction, rolling back when fn fails.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
