// Package vecidx provides an embedded vector similarity index.
//
// This file implements index-specific fluent builder APIs. Builders are
// immutable - each method returns a new builder with the updated
// configuration.
package vecidx

import (
	"github.com/hupe1980/vecidx/codec"
	"github.com/hupe1980/vecidx/distance"
	"github.com/hupe1980/vecidx/embedding"
	"github.com/hupe1980/vecidx/index"
	"github.com/hupe1980/vecidx/index/flat"
	"github.com/hupe1980/vecidx/index/hnsw"
)

// =============================================================================
// Flat Builder (Immutable)
// =============================================================================

// Flat creates a new flat index builder with the specified dimension.
// Flat provides exact nearest neighbor search by exhaustive comparison.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration.
//
// Example:
//
//	idx, err := vecidx.Flat[string](128).
//	    Cosine().
//	    Shards(2).
//	    Build()
func Flat[T any](dimension int) FlatBuilder[T] {
	return FlatBuilder[T]{
		dimension: dimension,
		metric:    distance.MetricCosine,
		numShards: 1,
	}
}

// FlatBuilder is an immutable fluent builder for flat-index instances.
// Each method returns a new builder with the updated configuration.
type FlatBuilder[T any] struct {
	dimension int
	metric    distance.Metric
	numShards int
	codec     codec.Codec
	logger    *Logger
	metrics   MetricsCollector
	embedder  embedding.Embedder
}

// Cosine sets the distance metric to cosine distance.
func (b FlatBuilder[T]) Cosine() FlatBuilder[T] {
	b.metric = distance.MetricCosine
	return b
}

// Euclidean sets the distance metric to Euclidean (L2) distance.
func (b FlatBuilder[T]) Euclidean() FlatBuilder[T] {
	b.metric = distance.MetricEuclidean
	return b
}

// Shards sets the number of shards for parallel write throughput.
// Default: 1 (no sharding).
func (b FlatBuilder[T]) Shards(n int) FlatBuilder[T] {
	b.numShards = n
	return b
}

// Codec sets the codec used for payload serialization in snapshots.
func (b FlatBuilder[T]) Codec(c codec.Codec) FlatBuilder[T] {
	b.codec = c
	return b
}

// Logger sets the structured logger for operation tracing.
func (b FlatBuilder[T]) Logger(l *Logger) FlatBuilder[T] {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b FlatBuilder[T]) Metrics(mc MetricsCollector) FlatBuilder[T] {
	b.metrics = mc
	return b
}

// Embedder sets the text embedder, enabling InsertText and SearchText.
func (b FlatBuilder[T]) Embedder(e embedding.Embedder) FlatBuilder[T] {
	b.embedder = e
	return b
}

// Build creates the flat-index instance.
func (b FlatBuilder[T]) Build() (*Index[T], error) {
	factory := func() (index.Index, error) {
		return flat.New(func(o *flat.Options) {
			o.Dimension = b.dimension
			o.Metric = b.metric
		})
	}

	return newIndex[T](indexKindFlat, b.dimension, b.metric, factory, b.commonOptions()...)
}

// MustBuild creates the instance, panicking on error.
func (b FlatBuilder[T]) MustBuild() *Index[T] {
	idx, err := b.Build()
	if err != nil {
		panic(err)
	}

	return idx
}

func (b FlatBuilder[T]) commonOptions() []Option {
	var opts []Option
	if b.codec != nil {
		opts = append(opts, WithCodec(b.codec))
	}

	if b.numShards > 1 {
		opts = append(opts, WithNumShards(b.numShards))
	}

	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}

	if b.metrics != nil {
		opts = append(opts, WithMetricsCollector(b.metrics))
	}

	if b.embedder != nil {
		opts = append(opts, WithEmbedder(b.embedder))
	}

	return opts
}

// =============================================================================
// HNSW Builder (Immutable)
// =============================================================================

// HNSW creates a new HNSW index builder with the specified dimension.
// HNSW provides fast approximate nearest neighbor search in memory.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration.
//
// Example:
//
//	idx, err := vecidx.HNSW[string](128).
//	    Cosine().
//	    M(32).
//	    EFConstruction(200).
//	    Shards(4).
//	    Build()
func HNSW[T any](dimension int) HNSWBuilder[T] {
	return HNSWBuilder[T]{
		dimension:      dimension,
		metric:         distance.MetricCosine,
		m:              hnsw.DefaultOptions.M,
		efConstruction: hnsw.DefaultOptions.EFConstruction,
		efSearch:       hnsw.DefaultOptions.EFSearch,
		numShards:      1,
	}
}

// HNSWBuilder is an immutable fluent builder for HNSW-index instances.
// Each method returns a new builder with the updated configuration.
type HNSWBuilder[T any] struct {
	dimension      int
	metric         distance.Metric
	m              int
	efConstruction int
	efSearch       int
	seed           *uint64
	numShards      int
	codec          codec.Codec
	logger         *Logger
	metrics        MetricsCollector
	embedder       embedding.Embedder
}

// Cosine sets the distance metric to cosine distance.
func (b HNSWBuilder[T]) Cosine() HNSWBuilder[T] {
	b.metric = distance.MetricCosine
	return b
}

// Euclidean sets the distance metric to Euclidean (L2) distance.
func (b HNSWBuilder[T]) Euclidean() HNSWBuilder[T] {
	b.metric = distance.MetricEuclidean
	return b
}

// M sets the maximum number of connections per layer.
// Higher values improve recall but increase memory usage.
// Default: 16. Recommended range: 12-48.
func (b HNSWBuilder[T]) M(m int) HNSWBuilder[T] {
	b.m = m
	return b
}

// EFConstruction sets the exploration factor used during index
// construction. Higher values improve graph quality but slow down
// inserts. Default: 200.
//
// Note: this is different from search-time EF, which is set per query
// via Search().EF().
func (b HNSWBuilder[T]) EFConstruction(ef int) HNSWBuilder[T] {
	b.efConstruction = ef
	return b
}

// EFSearch sets the default search-time exploration factor. It can be
// overridden per query and is clamped to at least k. Default: 100.
func (b HNSWBuilder[T]) EFSearch(ef int) HNSWBuilder[T] {
	b.efSearch = ef
	return b
}

// RandomSeed sets the seed for deterministic graph construction.
// If not set, a random seed is used.
func (b HNSWBuilder[T]) RandomSeed(seed uint64) HNSWBuilder[T] {
	b.seed = &seed
	return b
}

// Shards sets the number of shards for parallel write throughput.
// Default: 1 (no sharding).
func (b HNSWBuilder[T]) Shards(n int) HNSWBuilder[T] {
	b.numShards = n
	return b
}

// Codec sets the codec used for payload serialization in snapshots.
func (b HNSWBuilder[T]) Codec(c codec.Codec) HNSWBuilder[T] {
	b.codec = c
	return b
}

// Logger sets the structured logger for operation tracing.
func (b HNSWBuilder[T]) Logger(l *Logger) HNSWBuilder[T] {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b HNSWBuilder[T]) Metrics(mc MetricsCollector) HNSWBuilder[T] {
	b.metrics = mc
	return b
}

// Embedder sets the text embedder, enabling InsertText and SearchText.
func (b HNSWBuilder[T]) Embedder(e embedding.Embedder) HNSWBuilder[T] {
	b.embedder = e
	return b
}

// Build creates the HNSW-index instance.
func (b HNSWBuilder[T]) Build() (*Index[T], error) {
	factory := func() (index.Index, error) {
		return hnsw.New(func(o *hnsw.Options) {
			o.Dimension = b.dimension
			o.Metric = b.metric
			o.M = b.m
			o.EFConstruction = b.efConstruction
			o.EFSearch = b.efSearch
			if b.seed != nil {
				o.Seed = *b.seed
			}
		})
	}

	return newIndex[T](indexKindHNSW, b.dimension, b.metric, factory, b.commonOptions()...)
}

// MustBuild creates the instance, panicking on error.
func (b HNSWBuilder[T]) MustBuild() *Index[T] {
	idx, err := b.Build()
	if err != nil {
		panic(err)
	}

	return idx
}

func (b HNSWBuilder[T]) commonOptions() []Option {
	var opts []Option
	if b.codec != nil {
		opts = append(opts, WithCodec(b.codec))
	}

	if b.numShards > 1 {
		opts = append(opts, WithNumShards(b.numShards))
	}

	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}

	if b.metrics != nil {
		opts = append(opts, WithMetricsCollector(b.metrics))
	}

	if b.embedder != nil {
		opts = append(opts, WithEmbedder(b.embedder))
	}

	return opts
}
