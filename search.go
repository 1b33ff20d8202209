// Package vecidx provides an embedded vector similarity index.
//
// This file implements a fluent search API for querying Index instances.
package vecidx

import (
	"context"

	"github.com/hupe1980/vecidx/metadata"
)

// Search creates a new fluent search builder for the given query vector.
//
// Example:
//
//	results, err := idx.Search(query).
//	    KNN(10).
//	    Where("category", metadata.OpEqual, metadata.String("news")).
//	    Execute(ctx)
func (idx *Index[T]) Search(query []float32) *SearchBuilder[T] {
	return &SearchBuilder[T]{
		idx:   idx,
		query: query,
		k:     10, // Default k
		ef:    0,  // Use index default
	}
}

// SearchText creates a fluent search builder for a text query. The text
// is embedded with the configured embedder when the search executes.
// Requires WithEmbedder.
func (idx *Index[T]) SearchText(text string) *SearchBuilder[T] {
	return &SearchBuilder[T]{
		idx:    idx,
		text:   text,
		byText: true,
		k:      10,
	}
}

// SearchBuilder is a fluent builder for constructing search queries.
type SearchBuilder[T any] struct {
	idx    *Index[T]
	query  []float32
	text   string
	byText bool
	k      int
	ef     int

	filters        *metadata.FilterSet
	maxDistance    float64
	hasMaxDistance bool
}

// KNN sets the number of nearest neighbors to return. Values <= 0
// yield an empty result.
func (sb *SearchBuilder[T]) KNN(k int) *SearchBuilder[T] {
	sb.k = k
	return sb
}

// EF sets the exploration factor for HNSW search. Higher values improve
// recall but slow down search. Exact indexes ignore it.
func (sb *SearchBuilder[T]) EF(ef int) *SearchBuilder[T] {
	sb.ef = ef
	return sb
}

// Filter sets the metadata filter set. All filters must match (AND).
func (sb *SearchBuilder[T]) Filter(fs *metadata.FilterSet) *SearchBuilder[T] {
	sb.filters = fs
	return sb
}

// Where appends a single metadata filter condition.
// Convenience method for building the filter set inline.
func (sb *SearchBuilder[T]) Where(key string, op metadata.Operator, value metadata.Value) *SearchBuilder[T] {
	if sb.filters == nil {
		sb.filters = metadata.NewFilterSet()
	}

	sb.filters.Filters = append(sb.filters.Filters, metadata.Filter{Key: key, Operator: op, Value: value})

	return sb
}

// MaxDistance drops results farther than d from the query.
func (sb *SearchBuilder[T]) MaxDistance(d float64) *SearchBuilder[T] {
	sb.maxDistance = d
	sb.hasMaxDistance = true
	return sb
}

// Execute runs the search and returns the results, ordered from nearest
// to farthest with ties broken by insertion order.
func (sb *SearchBuilder[T]) Execute(ctx context.Context) ([]SearchResult[T], error) {
	query := sb.query

	if sb.byText {
		if sb.idx.opts.embedder == nil {
			return nil, ErrNoEmbedder
		}

		vector, err := sb.idx.opts.embedder.Embed(ctx, sb.text)
		if err != nil {
			return nil, err
		}

		query = vector
	}

	return sb.idx.query(ctx, query, queryOptions{
		k:              sb.k,
		ef:             sb.ef,
		filters:        sb.filters,
		maxDistance:    sb.maxDistance,
		hasMaxDistance: sb.hasMaxDistance,
	})
}

// MustExecute runs the search, panicking on error.
// Use this only in tests or when you're certain the query is valid.
func (sb *SearchBuilder[T]) MustExecute(ctx context.Context) []SearchResult[T] {
	results, err := sb.Execute(ctx)
	if err != nil {
		panic(err)
	}

	return results
}

// First returns only the nearest result, or ErrNotFound if none match.
func (sb *SearchBuilder[T]) First(ctx context.Context) (SearchResult[T], error) {
	sb.k = 1

	results, err := sb.Execute(ctx)
	if err != nil {
		return SearchResult[T]{}, err
	}

	if len(results) == 0 {
		return SearchResult[T]{}, ErrNotFound
	}

	return results[0], nil
}

// Count executes the search and returns the number of results.
func (sb *SearchBuilder[T]) Count(ctx context.Context) (int, error) {
	results, err := sb.Execute(ctx)
	if err != nil {
		return 0, err
	}

	return len(results), nil
}

// Exists checks if at least one result matches the search.
func (sb *SearchBuilder[T]) Exists(ctx context.Context) (bool, error) {
	sb.k = 1

	results, err := sb.Execute(ctx)
	if err != nil {
		return false, err
	}

	return len(results) > 0, nil
}
