package repository

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned when no row matches the requested key, either on
// a read or because an update or delete affected zero rows.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert or key change would collide with
// an existing row.
var ErrConflict = errors.New("conflict")

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
