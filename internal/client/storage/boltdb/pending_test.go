package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPending_AddRemoveList(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()

	keys, err := store.ListPending(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, store.AddPending(ctx, "alice", "work"))
	require.NoError(t, store.AddPending(ctx, "alice", "fitness"))
	// Повторное добавление не создает дубликат
	require.NoError(t, store.AddPending(ctx, "alice", "work"))

	keys, err = store.ListPending(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"fitness", "work"}, keys)

	require.NoError(t, store.RemovePending(ctx, "alice", "work"))
	require.NoError(t, store.RemovePending(ctx, "alice", "absent"))

	keys, err = store.ListPending(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"fitness"}, keys)
}

func TestPending_ScopesAreIsolated(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.AddPending(ctx, "alice", "work"))
	require.NoError(t, store.AddPending(ctx, "alicia", "sleep"))
	require.NoError(t, store.AddPending(ctx, "bob", "finance"))

	keys, err := store.ListPending(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"work"}, keys)

	keys, err = store.ListPending(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"finance"}, keys)
}
