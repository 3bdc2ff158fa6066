package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrResourceNotFound = errors.New("resource not found")

	ErrConflictNotFound = errors.New("conflict not found")

	ErrInvalidID = errors.New("invalid ID format")
)
