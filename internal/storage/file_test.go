package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/legisync/internal/logger"
	"github.com/jonesrussell/legisync/internal/storage"
)

func newFileStore(t *testing.T) *storage.FileStore {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir(), logger.NewNoOp())
	require.NoError(t, err)
	return store
}

func TestFileStore_PutGetDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFileStore(t)

	require.NoError(t, store.Put(ctx, "OHHB0001-1668-2019.txt", []byte("hello")))

	data, err := store.Get(ctx, "OHHB0001-1668-2019.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	exists, err := store.Exists(ctx, "OHHB0001-1668-2019.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, "OHHB0001-1668-2019.txt"))

	_, err = store.Get(ctx, "OHHB0001-1668-2019.txt")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Deleting again is not an error.
	assert.NoError(t, store.Delete(ctx, "OHHB0001-1668-2019.txt"))
}

func TestFileStore_GetMissingIsAbsentNotFatal(t *testing.T) {
	t.Parallel()

	store := newFileStore(t)
	_, err := store.Get(context.Background(), "nope.txt")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFileStore_ListOrderingAndFilters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFileStore(t)

	for _, name := range []string{"b.txt", "a.txt", "c.pdf", "a.pdf", "d.txt"} {
		require.NoError(t, store.Put(ctx, name, []byte(name)))
	}

	all, err := store.List(ctx, storage.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "a.txt", "b.txt", "c.pdf", "d.txt"}, all)

	txt, err := store.List(ctx, storage.ListQuery{Suffix: ".txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt", "d.txt"}, txt)

	prefixed, err := store.List(ctx, storage.ListQuery{Prefix: "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "a.txt"}, prefixed)

	// After is an exclusive cursor.
	after, err := store.List(ctx, storage.ListQuery{Suffix: ".txt", After: "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt", "d.txt"}, after)

	limited, err := store.List(ctx, storage.ListQuery{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "a.txt"}, limited)

	// Limit <= 0 means unlimited.
	unlimited, err := store.List(ctx, storage.ListQuery{Limit: -1})
	require.NoError(t, err)
	assert.Len(t, unlimited, 5)
}
