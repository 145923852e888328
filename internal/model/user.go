package model

import (
	"errors"
	"strings"
)

// Role is the closed set of authorization roles a user can hold.  Role
// values travel inside access tokens and are compared against the allowed
// set of every protected route.
type Role string

const (
	RoleUser  Role = "user"  // default role assigned at registration
	RoleAdmin Role = "admin" // garage staff with full access
)

// ErrUnknownRole is returned by ParseRole for any value outside the enumeration.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole converts a raw string (from a request body or a token claim)
// into a Role.  Matching is exact after trimming; "Admin" is not "admin".
func ParseRole(s string) (Role, error) {
	switch Role(strings.TrimSpace(s)) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", ErrUnknownRole
}

// Valid reports whether r is a member of the enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// User represents an account as stored in the `users` table.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name (3–20 chars, letters, digits, underscore).
//  PasswordHash – bcrypt digest; only loaded for credential checks and never serialized.
//  Role         – authorization role.
type User struct {
	ID           uint64 `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password_hash" json:"-"`
	Role         Role   `db:"role" json:"role"`
}
