package vecidx_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/vecidx"
	"github.com/hupe1980/vecidx/blobstore"
	"github.com/hupe1980/vecidx/metadata"
	"github.com/hupe1980/vecidx/pk"
)

// Example_flatBuilder demonstrates creating a flat index for exact search.
func Example_flatBuilder() {
	idx, err := vecidx.Flat[string](128). // 128-dimensional vectors
						Cosine().  // Cosine distance
						Shards(2). // Multi-core scaling
						Build()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("flat index created, dimension:", idx.Dimension())
	// Output: flat index created, dimension: 128
}

// Example_hnswBuilder demonstrates creating an HNSW index with the fluent builder.
func Example_hnswBuilder() {
	idx, err := vecidx.HNSW[string](128). // 128-dimensional vectors
						Euclidean().         // Distance function
						M(32).               // Graph connectivity
						EFConstruction(200). // Build-time search quality
						Build()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("hnsw index created, dimension:", idx.Dimension())
	// Output: hnsw index created, dimension: 128
}

// Example_search demonstrates inserting entries and running a filtered query.
func Example_search() {
	ctx := context.Background()

	idx := vecidx.Flat[string](3).Cosine().MustBuild()

	docs := []struct {
		key  string
		vec  []float32
		text string
		lang string
	}{
		{"a", []float32{1, 0, 0}, "first", "en"},
		{"b", []float32{0, 1, 0}, "second", "de"},
		{"c", []float32{1, 1, 0}, "third", "en"},
	}

	for _, d := range docs {
		err := idx.Insert(ctx, pk.StringKey(d.key), vecidx.Entry[string]{
			Vector:   d.vec,
			Data:     d.text,
			Metadata: metadata.Document{"lang": metadata.String(d.lang)},
		})
		if err != nil {
			log.Fatal(err)
		}
	}

	results, err := idx.Search([]float32{1, 0, 0}).
		KNN(2).
		Where("lang", metadata.OpEqual, metadata.String("en")).
		Execute(ctx)
	if err != nil {
		log.Fatal(err)
	}

	for _, r := range results {
		fmt.Printf("%s: %s\n", r.Key, r.Data)
	}
	// Output:
	// a: first
	// c: third
}

// Example_snapshot demonstrates persisting an index and restoring it.
func Example_snapshot() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	idx := vecidx.Flat[string](2).Euclidean().MustBuild()

	if err := idx.Insert(ctx, pk.StringKey("a"), vecidx.Entry[string]{
		Vector: []float32{1, 2},
		Data:   "payload",
	}); err != nil {
		log.Fatal(err)
	}

	if err := idx.SaveTo(ctx, store, "snapshots/001"); err != nil {
		log.Fatal(err)
	}

	restored, err := vecidx.LoadFrom[string](ctx, store, "snapshots/001")
	if err != nil {
		log.Fatal(err)
	}

	entry, _ := restored.Get(pk.StringKey("a"))
	fmt.Println(entry.Data)
	// Output: payload
}
