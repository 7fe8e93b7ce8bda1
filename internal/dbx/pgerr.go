package dbx

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error code for unique-constraint violations.
const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. Repositories use it to translate constraint failures into
// the Conflict sentinel instead of leaking driver errors.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// Postgres error code for malformed text input, e.g. a non-uuid string
// compared against a uuid column.
const invalidTextRepresentationCode = "22P02"

// IsInvalidTextRepresentation reports whether err is a Postgres
// invalid-text-representation error. Lookups keyed by id treat it like
// a missing row so a malformed id does not surface as a server error.
func IsInvalidTextRepresentation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentationCode
}
