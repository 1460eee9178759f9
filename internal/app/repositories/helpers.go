package repositories

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
)

// isNoRows reports whether the error is the pgx empty-result sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// joinColumns renders a column list for a RETURNING clause.
func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
