// Package repositories implements the persistence layer of the catalog. Each
// repository owns the SQL for one slice of the schema and resolves invariant
// violations into the result kinds of the catalog package instead of leaking
// driver errors: unique-constraint failures become catalog.ErrConflict and
// missing foreign-key targets become catalog.ErrNotFound. Multi-row writes
// that must be atomic run inside a single repeatable-read transaction owned by
// the repository method.
package repositories

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// Postgres error codes inspected by the repositories. Correctness under
// concurrent writers relies on these constraints, not on in-process locks:
// the losing insert of a race observes a unique violation and reports
// catalog.ErrConflict.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var txRepeatableRead = &sql.TxOptions{Isolation: sql.LevelRepeatableRead}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation
}
