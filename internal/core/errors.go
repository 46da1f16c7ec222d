package core

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Error kinds surfaced to the transport layer. Handlers map these to HTTP
// statuses; anything unwrapped is treated as internal.
var (
	// ErrNotFound means the target tenant or session does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the caller is authenticated but may not perform the
	// operation on this target. It is never used to hide existence of a tenant.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict means a unique constraint (tenant name) was violated.
	ErrConflict = errors.New("conflict")
)

// ValidationError reports a malformed or disallowed field. The whole update is
// rejected before any mutation when one of these is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErrorf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// uniqueViolation is the Postgres SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

// mapPgError converts driver-level errors into the core taxonomy, so callers
// only ever see ErrConflict for duplicate names instead of raw pg errors.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return err
}
