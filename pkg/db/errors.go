package db

import (
	"strings"

	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique-constraint failure from
// Postgres or SQLite. When constraintName is set the error must reference it.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if state := pkgerrors.FindSQLState(err); state != nil {
		return state.Code == pgUniqueViolation &&
			(constraintName == "" || state.Constraint == constraintName)
	}

	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
