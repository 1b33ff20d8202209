// Package vecidx provides an embedded, in-process vector similarity
// index for Go.
//
// Entries are keyed by a user key (string or uint64), carry a vector, an
// arbitrary typed payload, and optional metadata. Queries return the k
// nearest neighbors under cosine or Euclidean distance, with exact
// ties broken by insertion order.
//
//   - Index types: Flat (exact) and HNSW (approximate, opt-in)
//   - Type-safe fluent builders: Flat[T](), HNSW[T]()
//   - Metadata filtering with a Roaring-Bitmap inverted index
//   - Optional sharding for multi-core write throughput
//   - Snapshot persistence to local disk, memory, S3 or MinIO
//   - Pluggable text embedding (mock, remote HTTP, fallback chains)
//
// # Quick Start
//
// Create an exact-search index over string payloads:
//
//	ctx := context.Background()
//	idx, err := vecidx.Flat[string](3).Cosine().Build()
//	if err != nil {
//	    panic(err)
//	}
//
//	err = idx.Insert(ctx, pk.StringKey("a"), vecidx.Entry[string]{
//	    Vector: []float32{1, 0, 0},
//	    Data:   "first document",
//	    Metadata: metadata.Document{
//	        "category": metadata.String("tech"),
//	    },
//	})
//
// Query with the fluent API:
//
//	results, err := idx.Search([]float32{1, 0, 0.1}).
//	    KNN(5).
//	    Where("category", metadata.OpEqual, metadata.String("tech")).
//	    Execute(ctx)
//
// # Index Selection
//
// Flat scans every vector and always returns exact results; use it up
// to roughly 100K entries. HNSW answers approximately with much better
// scaling:
//
//	idx, err := vecidx.HNSW[string](128).
//	    Euclidean().
//	    M(32).
//	    EFConstruction(200).
//	    Build()
//
// # Persistence
//
// Snapshots round-trip through any blobstore.BlobStore:
//
//	store := blobstore.NewLocalStore("./data")
//	err = idx.SaveTo(ctx, store, "snapshots/001")
//	idx2, err := vecidx.LoadFrom[string](ctx, store, "snapshots/001")
package vecidx
