package storage

import "context"

// PendingStorage persists the set of entity keys whose latest local write
// has not been confirmed by the remote store. Scope isolates the sets of
// different users sharing one database file.
type PendingStorage interface {
	// AddPending adds key to the scope's pending set (idempotent)
	AddPending(ctx context.Context, scope, key string) error

	// RemovePending removes key from the scope's pending set (idempotent)
	RemovePending(ctx context.Context, scope, key string) error

	// ListPending returns the scope's pending keys in byte order
	ListPending(ctx context.Context, scope string) ([]string, error)
}
