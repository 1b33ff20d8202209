package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, store BlobStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("OpenMissing", func(t *testing.T) {
		_, err := store.Open(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("PutOpen", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "a/one", []byte("hello world")))

		blob, err := store.Open(ctx, "a/one")
		require.NoError(t, err)
		defer blob.Close()

		assert.Equal(t, int64(11), blob.Size())

		p := make([]byte, 5)
		n, err := blob.ReadAt(ctx, p, 6)
		require.NoError(t, err)
		assert.Equal(t, "world", string(p[:n]))

		rc, err := blob.ReadRange(ctx, 0, 5)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, "hello", string(data))
	})

	t.Run("ReadRangeClamped", func(t *testing.T) {
		blob, err := store.Open(ctx, "a/one")
		require.NoError(t, err)
		defer blob.Close()

		rc, err := blob.ReadRange(ctx, 6, 100)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "world", string(data))
	})

	t.Run("CreateClosePublishes", func(t *testing.T) {
		w, err := store.Create(ctx, "a/two")
		require.NoError(t, err)
		_, err = w.Write([]byte("part1"))
		require.NoError(t, err)
		_, err = w.Write([]byte("part2"))
		require.NoError(t, err)
		require.NoError(t, w.Sync())
		require.NoError(t, w.Close())

		blob, err := store.Open(ctx, "a/two")
		require.NoError(t, err)
		defer blob.Close()

		data, err := ReadAll(ctx, blob)
		require.NoError(t, err)
		assert.Equal(t, "part1part2", string(data))
	})

	t.Run("List", func(t *testing.T) {
		names, err := store.List(ctx, "a/")
		require.NoError(t, err)
		assert.Equal(t, []string{"a/one", "a/two"}, names)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "a/two"))
		_, err := store.Open(ctx, "a/two")
		assert.ErrorIs(t, err, ErrNotFound)

		// Deleting again is not an error.
		require.NoError(t, store.Delete(ctx, "a/two"))
	})
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	testStore(t, NewLocalStore(t.TempDir()))
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	data := []byte("abc")
	require.NoError(t, store.Put(ctx, "x", data))

	data[0] = 'z'

	blob, err := store.Open(ctx, "x")
	require.NoError(t, err)
	defer blob.Close()

	got, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}
