package storage

import "context"

// RecordStorage is the local durable key-value medium. Keys are already
// namespaced by the caller; values are opaque serialized records.
type RecordStorage interface {
	// Get returns the raw value stored under key
	// Returns ErrRecordNotFound if key doesn't exist
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Keys returns all keys starting with prefix in byte order
	Keys(ctx context.Context, prefix string) ([]string, error)
}
