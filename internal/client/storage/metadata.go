package storage

import "context"

// MetadataStorage defines interface for storing client sync metadata
type MetadataStorage interface {
	// SaveLastPullTimestamp saves the time (unix ms) of the last successful pull for scope
	SaveLastPullTimestamp(ctx context.Context, scope string, timestamp int64) error

	// GetLastPullTimestamp retrieves the time of the last successful pull for scope
	// Returns 0 if no pull has been performed yet
	GetLastPullTimestamp(ctx context.Context, scope string) (int64, error)
}
