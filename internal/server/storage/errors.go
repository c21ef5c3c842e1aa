package storage

import "errors"

// Common storage errors
var (
	// ErrInvalidRow indicates that a row misses its user id or key
	ErrInvalidRow = errors.New("invalid row")
)
