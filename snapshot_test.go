package vecidx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecidx/blobstore"
	"github.com/hupe1980/vecidx/metadata"
	"github.com/hupe1980/vecidx/pk"
	"github.com/hupe1980/vecidx/snapshot"
)

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		store := blobstore.NewMemoryStore()

		idx := Flat[string](3).Cosine().MustBuild()

		require.NoError(t, idx.Insert(ctx, pk.StringKey("a"), Entry[string]{
			Vector:   []float32{1, 0, 0},
			Data:     "first",
			Metadata: metadata.Document{"lang": metadata.String("en")},
		}))
		require.NoError(t, idx.Insert(ctx, pk.Uint64Key(7), Entry[string]{
			Vector: []float32{0, 1, 0},
			Data:   "second",
		}))

		require.NoError(t, idx.SaveTo(ctx, store, "snapshots/001"))

		loaded, err := LoadFrom[string](ctx, store, "snapshots/001")
		require.NoError(t, err)

		assert.Equal(t, 2, loaded.Size())
		assert.Equal(t, 3, loaded.Dimension())

		entry, ok := loaded.Get(pk.StringKey("a"))
		require.True(t, ok)
		assert.Equal(t, "first", entry.Data)
		assert.Equal(t, []float32{1, 0, 0}, entry.Vector)
		assert.Equal(t, metadata.String("en"), entry.Metadata["lang"])

		entry, ok = loaded.Get(pk.Uint64Key(7))
		require.True(t, ok)
		assert.Equal(t, "second", entry.Data)
	})

	t.Run("PreservesInsertionOrder", func(t *testing.T) {
		store := blobstore.NewMemoryStore()

		idx := Flat[string](2).Euclidean().MustBuild()

		// Equidistant entries; order must survive the round trip.
		require.NoError(t, idx.Insert(ctx, pk.StringKey("first"), Entry[string]{Vector: []float32{1, 0}}))
		require.NoError(t, idx.Insert(ctx, pk.StringKey("second"), Entry[string]{Vector: []float32{-1, 0}}))

		require.NoError(t, idx.SaveTo(ctx, store, "snap"))

		loaded, err := LoadFrom[string](ctx, store, "snap")
		require.NoError(t, err)

		results, err := loaded.Search([]float32{0, 0}).KNN(2).Execute(ctx)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, pk.StringKey("first"), results[0].Key)
		assert.Equal(t, pk.StringKey("second"), results[1].Key)
	})

	t.Run("SequenceCounterResumes", func(t *testing.T) {
		store := blobstore.NewMemoryStore()

		idx := Flat[string](2).Euclidean().MustBuild()

		require.NoError(t, idx.Insert(ctx, pk.StringKey("old"), Entry[string]{Vector: []float32{1, 0}}))

		require.NoError(t, idx.SaveTo(ctx, store, "snap"))

		loaded, err := LoadFrom[string](ctx, store, "snap")
		require.NoError(t, err)

		// A post-load insert must order after everything restored.
		require.NoError(t, loaded.Insert(ctx, pk.StringKey("new"), Entry[string]{Vector: []float32{-1, 0}}))

		results, err := loaded.Search([]float32{0, 0}).KNN(2).Execute(ctx)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, pk.StringKey("old"), results[0].Key)
		assert.Equal(t, pk.StringKey("new"), results[1].Key)
	})

	t.Run("HNSWRoundTrip", func(t *testing.T) {
		store := blobstore.NewMemoryStore()

		idx := HNSW[int](4).Euclidean().RandomSeed(42).MustBuild()

		for i := range 50 {
			require.NoError(t, idx.Insert(ctx, pk.Uint64Key(uint64(i)+1), Entry[int]{
				Vector: []float32{float32(i), 0, 0, 0},
				Data:   i,
			}))
		}

		require.NoError(t, idx.SaveTo(ctx, store, "hnsw-snap"))

		loaded, err := LoadFrom[int](ctx, store, "hnsw-snap")
		require.NoError(t, err)

		assert.Equal(t, 50, loaded.Size())

		result, err := loaded.Search([]float32{25, 0, 0, 0}).KNN(1).EF(100).First(ctx)
		require.NoError(t, err)
		assert.Equal(t, 25, result.Data)
	})

	t.Run("ShardedRoundTrip", func(t *testing.T) {
		store := blobstore.NewMemoryStore()

		idx := Flat[int](2).Euclidean().Shards(4).MustBuild()

		for i := range 16 {
			require.NoError(t, idx.Insert(ctx, pk.Uint64Key(uint64(i)+1), Entry[int]{
				Vector: []float32{float32(i), 0},
				Data:   i,
			}))
		}

		require.NoError(t, idx.SaveTo(ctx, store, "snap"))

		// Restore into a different shard count; routing is rebuilt.
		loaded, err := LoadFrom[int](ctx, store, "snap", WithNumShards(2))
		require.NoError(t, err)

		assert.Equal(t, 16, loaded.Size())

		for i := range 16 {
			entry, ok := loaded.Get(pk.Uint64Key(uint64(i) + 1))
			require.True(t, ok)
			assert.Equal(t, i, entry.Data)
		}
	})

	t.Run("LocalStoreRoundTrip", func(t *testing.T) {
		store := blobstore.NewLocalStore(t.TempDir())

		idx := Flat[string](2).Euclidean().MustBuild()
		require.NoError(t, idx.Insert(ctx, pk.StringKey("a"), Entry[string]{Vector: []float32{1, 2}, Data: "disk"}))

		require.NoError(t, idx.SaveTo(ctx, store, "snapshots/001"))

		loaded, err := LoadFrom[string](ctx, store, "snapshots/001")
		require.NoError(t, err)

		entry, ok := loaded.Get(pk.StringKey("a"))
		require.True(t, ok)
		assert.Equal(t, "disk", entry.Data)
	})

	t.Run("MissingBlob", func(t *testing.T) {
		store := blobstore.NewMemoryStore()

		_, err := LoadFrom[string](context.Background(), store, "nope")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("CorruptBlob", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		require.NoError(t, store.Put(ctx, "junk", []byte("not a snapshot")))

		_, err := LoadFrom[string](ctx, store, "junk")
		assert.ErrorIs(t, err, snapshot.ErrBadMagic)
	})

	t.Run("CompressionOverride", func(t *testing.T) {
		store := blobstore.NewMemoryStore()

		idx := Flat[string](2).MustBuild()
		require.NoError(t, idx.Insert(ctx, pk.StringKey("a"), Entry[string]{Vector: []float32{1, 0}, Data: "x"}))

		require.NoError(t, idx.SaveTo(ctx, store, "snap", func(o *SnapshotOptions) {
			o.Compression = snapshot.CompressionLZ4
		}))

		loaded, err := LoadFrom[string](ctx, store, "snap")
		require.NoError(t, err)

		entry, ok := loaded.Get(pk.StringKey("a"))
		require.True(t, ok)
		assert.Equal(t, "x", entry.Data)
	})
}
