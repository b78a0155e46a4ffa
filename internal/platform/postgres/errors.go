package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/gridstonehq/gridstone-api/internal/store"
)

// Class 23 integrity constraint violation codes from the PostgreSQL
// manual. These are the only codes the stores translate; everything
// else passes through for the caller to report as an internal failure.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
)

// pgCode returns the PostgreSQL error code carried by err, or the empty
// string when err does not wrap a pgconn.PgError.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// MapError translates a database error into the matching store sentinel,
// wrapping the original error so callers retain the driver detail.
// Errors without a specific mapping pass through unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: foreign key %s: %v", store.ErrConflict, pgErr.ConstraintName, err)
	case codeCheckViolation:
		return fmt.Errorf("%w: check constraint %s: %v", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case codeNotNullViolation:
		return fmt.Errorf("%w: column %s must not be null: %v", store.ErrInvalidEntity, pgErr.ColumnName, err)
	default:
		return err
	}
}

// IsUniqueViolation reports whether err is a unique constraint violation,
// meaning an attempt to create a duplicate record.
func IsUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// IsForeignKeyViolation reports whether err is a foreign key violation,
// meaning an operation that would break referential integrity.
func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// IsCheckConstraintViolation reports whether err is a CHECK constraint
// violation.
func IsCheckConstraintViolation(err error) bool {
	return pgCode(err) == codeCheckViolation
}

// IsNotNullViolation reports whether err is a NOT NULL violation.
func IsNotNullViolation(err error) bool {
	return pgCode(err) == codeNotNullViolation
}

// IsNotFoundError reports whether err represents a missing row, covering
// both sql.ErrNoRows and anything wrapping store.ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, store.ErrNotFound)
}

// CheckRowsAffected inspects the outcome of an UPDATE or DELETE. Zero
// affected rows means the target record does not exist, so the given
// not-found sentinel comes back (store.ErrNotFound when nil).
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	if notFound == nil {
		return store.ErrNotFound
	}
	return notFound
}

// MapUniqueViolation translates a unique violation into the given
// entity-specific duplicate sentinel, wrapping the original error.
// Errors that are not unique violations come back unchanged.
func MapUniqueViolation(err error, duplicate error) error {
	if !IsUniqueViolation(err) {
		return err
	}

	if duplicate == nil {
		duplicate = store.ErrDuplicate
	}
	return fmt.Errorf("%w: %v", duplicate, err)
}
