package utils

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// Credential rules applied at registration.
var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	// passwordCharsRe lists every character a password may contain.
	passwordCharsRe = regexp.MustCompile(`^[A-Za-z0-9@$!%*?&=]+$`)
)

// PasswordSymbols is the set a password must draw at least one symbol from.
const PasswordSymbols = "@$!%*?&="

const (
	MinPasswordLen = 8
	MaxPasswordLen = 72 // bcrypt ignores input past 72 bytes
)

var (
	ErrInvalidUsername = errors.New("Username must be 3-20 characters long and contain only letters, numbers, and underscores")
	ErrEmptyPassword   = errors.New("Password cannot be empty")
	ErrWeakPassword    = errors.New("Password must be 8-72 characters and include an uppercase letter, a lowercase letter, a number and a special character (@$!%*?&=)")
)

// ValidateUsername checks the username format.
func ValidateUsername(u string) error {
	if !usernameRe.MatchString(u) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidatePassword enforces the password policy.  Whitespace-only input is
// treated as empty.
func ValidatePassword(p string) error {
	if strings.TrimSpace(p) == "" {
		return ErrEmptyPassword
	}
	if len(p) < MinPasswordLen || len(p) > MaxPasswordLen || !passwordCharsRe.MatchString(p) {
		return ErrWeakPassword
	}
	var lower, upper, digit, symbol bool
	for _, r := range p {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	if !lower || !upper || !digit || !symbol {
		return ErrWeakPassword
	}
	return nil
}
