package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/lifedash/internal/client/storage"
)

func TestRecords_PutGet(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()

	_, err := store.Get(ctx, "user:alice:fitness")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)

	require.NoError(t, store.Put(ctx, "user:alice:fitness", []byte("one")))
	require.NoError(t, store.Put(ctx, "user:alice:fitness", []byte("two")))

	value, err := store.Get(ctx, "user:alice:fitness")
	require.NoError(t, err)
	assert.Equal(t, "two", string(value))
}

func TestRecords_Delete(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", []byte("v")))
	require.NoError(t, store.Delete(ctx, "k"))

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)

	// Удаление отсутствующего ключа не ошибка
	assert.NoError(t, store.Delete(ctx, "k"))
}

func TestRecords_KeysByPrefix(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()

	for _, key := range []string{
		"user:alice:work",
		"user:alice:fitness",
		"user:alicia:work",
		"guest:123:work",
	} {
		require.NoError(t, store.Put(ctx, key, []byte("{}")))
	}

	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{name: "user namespace", prefix: "user:alice:", want: []string{"user:alice:fitness", "user:alice:work"}},
		{name: "guest namespace", prefix: "guest:123:", want: []string{"guest:123:work"}},
		{name: "unknown", prefix: "user:bob:", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, err := store.Keys(ctx, tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, keys)
		})
	}
}
