package vecidx_test

import (
	"context"
	"testing"

	"github.com/hupe1980/vecidx"
	"github.com/hupe1980/vecidx/embedding"
	"github.com/hupe1980/vecidx/pk"
)

func TestBuilder_Flat_Basic(t *testing.T) {
	idx, err := vecidx.Flat[string](4).
		Cosine().
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	ctx := context.Background()

	err = idx.Insert(ctx, pk.StringKey("a"), vecidx.Entry[string]{
		Vector: []float32{1, 2, 3, 4},
		Data:   "test",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if idx.Size() != 1 {
		t.Fatalf("Size = %d, want 1", idx.Size())
	}
}

func TestBuilder_Flat_FullOptions(t *testing.T) {
	idx, err := vecidx.Flat[int](4).
		Euclidean().
		Shards(2).
		Codec(nil). // nil falls back to the default codec
		Logger(vecidx.NoopLogger()).
		Metrics(&vecidx.BasicMetricsCollector{}).
		Embedder(embedding.NewMock(4)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	ctx := context.Background()

	err = idx.Insert(ctx, pk.Uint64Key(1), vecidx.Entry[int]{
		Vector: []float32{1, 2, 3, 4},
		Data:   42,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
}

func TestBuilder_HNSW_FullOptions(t *testing.T) {
	idx, err := vecidx.HNSW[string](4).
		Euclidean().
		M(32).
		EFConstruction(100).
		EFSearch(64).
		RandomSeed(7).
		Shards(2).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	ctx := context.Background()

	err = idx.Insert(ctx, pk.StringKey("a"), vecidx.Entry[string]{
		Vector: []float32{1, 2, 3, 4},
		Data:   "test",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
}

func TestBuilder_InvalidDimension(t *testing.T) {
	if _, err := vecidx.Flat[string](-1).Build(); err == nil {
		t.Fatal("expected error for negative dimension")
	}

	if _, err := vecidx.HNSW[string](0).Build(); err == nil {
		t.Fatal("expected error for zero dimension")
	}
}

func TestBuilder_Immutability(t *testing.T) {
	base := vecidx.Flat[string](4)

	cosine := base.Cosine()
	euclidean := base.Euclidean()

	a, err := cosine.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	b, err := euclidean.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if a.Metric() == b.Metric() {
		t.Fatal("builders share state: metrics should differ")
	}
}

func TestBuilder_MustBuildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()

	vecidx.Flat[string](0).MustBuild()
}
