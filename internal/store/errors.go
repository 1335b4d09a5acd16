package store

import (
	"errors"

	"modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a referenced account, charity, or
	// favorite edge does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when an insert would violate a
	// uniqueness constraint (duplicate username or favorite edge).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidCredentials is returned by Authenticate for an unknown
	// username or a wrong password, without distinguishing the two.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// SQLite extended result codes for uniqueness violations.
const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// isUniqueViolation reports whether err is a SQLite uniqueness constraint
// failure. Concurrent duplicate inserts are serialized by the constraint
// itself, so this is the signal that a row already exists.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	code := serr.Code()
	return code == sqliteConstraintUnique || code == sqliteConstraintPrimaryKey
}
