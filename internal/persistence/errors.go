package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a write collides with a unique index.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned for any other rejected constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
