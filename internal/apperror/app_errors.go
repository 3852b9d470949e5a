package apperror

import "errors"

// Failure classes shared by every package. Specific errors wrap one of these
// with %w so callers can match either the class or the concrete error.
var (
	ErrNotFound      = errors.New("not found")
	ErrOutOfRange    = errors.New("out of range")
	ErrSerialization = errors.New("serialization error")
	ErrStateConflict = errors.New("state conflict")
	ErrIOFailure     = errors.New("io failure")
)
