// Package repository contains the sqlx persistence layer. Every
// repository takes a *sqlx.DB and exposes predicate-based reads and
// writes; business rules live in the service layer.
package repository

import "strings"

// isUniqueViolation matches SQLite's constraint error text. The driver
// does not export a typed error for it.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
