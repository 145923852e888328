// Package repository defines the Credential Store and Resource Store over
// sqlx, plus error values that are reused across all repositories.  These
// sentinels let handlers distinguish failure scenarios without inspecting
// driver errors, which never leave this package unwrapped.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when the requested row does not exist (or is not
// visible to the caller).  Handlers translate this into an HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a uniqueness
// constraint (username, email, license plate, VIN).
var ErrDuplicate = errors.New("duplicate")

// ErrInvalidReference is returned when a foreign key on insert or update
// points at a row that does not exist.
var ErrInvalidReference = errors.New("referenced row does not exist")

// ErrInUse is returned when a delete is blocked because other rows still
// reference the target, e.g. deleting a customer that owns vehicles.
var ErrInUse = errors.New("row is still referenced")

// ErrVehicleMismatch is returned when a vehicle does not belong to the
// customer named alongside it.
var ErrVehicleMismatch = errors.New("vehicle does not belong to customer")

// ErrTotalTooLarge is returned when an invoice total, or a unit price read
// while computing it, is beyond what the schema can store.
var ErrTotalTooLarge = errors.New("invoice total exceeds the storable maximum")

// ServiceNotFoundError reports the first invoice item whose service id has
// no row.  It is matched with errors.As.
type ServiceNotFoundError struct {
	ID uint64
}

func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("service with ID %d not found", e.ID)
}

type constraintKind int

const (
	constraintNone constraintKind = iota
	constraintUnique
	constraintForeignKey
	constraintForeignKeyParent // MySQL distinguishes delete-side violations
)

// classifyConstraint recognises constraint violations from all supported drivers.
func classifyConstraint(err error) constraintKind {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return constraintUnique
		case 1451:
			return constraintForeignKeyParent
		case 1452:
			return constraintForeignKey
		}
		return constraintNone
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return constraintUnique
		case "23503":
			return constraintForeignKey
		}
		return constraintNone
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return constraintUnique
		case sqlite3.ErrConstraintForeignKey:
			return constraintForeignKey
		}
	}
	return constraintNone
}

// mapWriteErr converts a driver error from an INSERT or UPDATE into one of
// the sentinels, keeping the original error in the chain for logging.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	switch classifyConstraint(err) {
	case constraintUnique:
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	case constraintForeignKey, constraintForeignKeyParent:
		return fmt.Errorf("%w: %w", ErrInvalidReference, err)
	}
	return err
}

// mapDeleteErr is mapWriteErr for DELETE statements, where a foreign key
// violation means the row is still referenced.
func mapDeleteErr(err error) error {
	if err == nil {
		return nil
	}
	switch classifyConstraint(err) {
	case constraintForeignKey, constraintForeignKeyParent:
		return fmt.Errorf("%w: %w", ErrInUse, err)
	}
	return err
}

// mapReadErr turns sql.ErrNoRows into ErrNotFound.
func mapReadErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
