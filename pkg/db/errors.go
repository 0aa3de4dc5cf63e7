package db

import "strings"

// Unique-violation phrasing differs per engine: postgres names the
// constraint, sqlite only reports the column.
const (
	pgDuplicateMarker     = "duplicate key value"
	sqliteDuplicateMarker = "UNIQUE constraint failed"
)

// IsUniqueViolation reports whether the provided error is a unique
// violation. When constraintName is provided it is matched first, but the
// generic engine markers still apply for engines that do not surface
// constraint names in their error text.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" && strings.Contains(msg, constraintName) {
		return true
	}
	return strings.Contains(msg, pgDuplicateMarker) || strings.Contains(msg, sqliteDuplicateMarker)
}
