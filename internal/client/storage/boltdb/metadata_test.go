package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastPullTimestamp(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()

	// Pull еще не выполнялся
	ts, err := store.GetLastPullTimestamp(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	require.NoError(t, store.SaveLastPullTimestamp(ctx, "alice", 1700000000123))
	require.NoError(t, store.SaveLastPullTimestamp(ctx, "bob", 42))

	ts, err = store.GetLastPullTimestamp(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123), ts)

	ts, err = store.GetLastPullTimestamp(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(42), ts)
}
