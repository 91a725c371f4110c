package repositories

import (
	"errors"

	"github.com/go-pg/pg/v10"
)

type repository struct {
	db *pg.DB
}

// noRows translates the driver's empty-result error into a nil error so
// callers can branch on a nil model instead of inspecting driver errors.
func noRows(err error) bool {
	return errors.Is(err, pg.ErrNoRows)
}
