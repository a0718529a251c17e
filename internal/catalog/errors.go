// Package catalog defines the result kinds shared by the catalog repositories
// and services. Invariant violations are resolved into these values close to
// the database and inspected with errors.Is / errors.As at the HTTP boundary,
// so handlers never have to parse driver errors or rely on panics for control
// flow.
package catalog

import "errors"

var (
	// ErrConflict is returned when a create would violate a uniqueness
	// invariant (duplicate app_id, duplicate (app_id, version), or a
	// duplicate platform row outside the upsert path).
	ErrConflict = errors.New("catalog: resource already exists")

	// ErrNotFound is returned when the target app or version does not exist.
	ErrNotFound = errors.New("catalog: resource not found")
)

// ValidationError reports a malformed or missing field in a request payload.
// The field name is carried so the boundary can point the caller at the
// offending attribute.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "catalog: invalid " + e.Field + ": " + e.Reason
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
