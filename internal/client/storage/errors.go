package storage

import "errors"

// Common client storage errors
var (
	// ErrSessionNotFound indicates that no session has been saved
	ErrSessionNotFound = errors.New("session not found")

	// ErrRecordNotFound indicates that no record exists under the key
	ErrRecordNotFound = errors.New("record not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
