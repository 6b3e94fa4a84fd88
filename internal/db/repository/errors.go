package repository

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// Sentinel errors returned by repositories
var (
	// ErrNotFound is returned when a lookup matches no record
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateNumber is returned when an insert violates the
	// certificate_number uniqueness constraint. Callers allocating
	// sequential numbers treat this as retryable.
	ErrDuplicateNumber = errors.New("certificate number already exists")
)

// translateConstraint maps SQLite unique-constraint violations to
// ErrDuplicateNumber and passes everything else through.
func translateConstraint(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrDuplicateNumber
	}
	return err
}
