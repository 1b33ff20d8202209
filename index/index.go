// Package index defines the contract shared by vecidx vector indexes.
package index

import (
	"context"
	"fmt"

	"github.com/hupe1980/vecidx/distance"
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for dimension mismatch.
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrInvalidDimension indicates an invalid configured dimension.
type ErrInvalidDimension struct {
	Dimension int
}

// Error returns the error message for an invalid dimension.
func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

// ErrSlotNotFound indicates that a slot does not exist in the index.
type ErrSlotNotFound struct {
	Slot uint32
}

// Error returns the error message for a missing slot.
func (e *ErrSlotNotFound) Error() string {
	return fmt.Sprintf("slot not found: %d", e.Slot)
}

// ValidateOptions validates the dimension and metric shared by all index types.
func ValidateOptions(dimension int, metric distance.Metric) error {
	if dimension <= 0 {
		return &ErrInvalidDimension{Dimension: dimension}
	}
	if !metric.Valid() {
		return fmt.Errorf("index: unsupported metric: %v", metric)
	}
	return nil
}

// SearchResult represents a single match produced by an index.
type SearchResult struct {
	// Slot is the internal identifier of the matched entry.
	Slot uint32

	// Seq is the insertion sequence number of the matched entry.
	// Equal distances order by ascending Seq (earlier-inserted wins).
	Seq uint64

	// Distance is the distance between the query vector and the entry,
	// under the metric the index was created with.
	Distance float64
}

// Less reports whether r orders before other in a result list.
func (r SearchResult) Less(other SearchResult) bool {
	if r.Distance != other.Distance {
		return r.Distance < other.Distance
	}
	return r.Seq < other.Seq
}

// SearchOptions controls the execution of a single search.
type SearchOptions struct {
	// Filter restricts the search to slots for which it returns true.
	// A nil Filter admits every slot.
	Filter func(slot uint32) bool

	// EF overrides the exploration factor for approximate indexes.
	// Zero means use the index default. Exact indexes ignore it.
	EF int
}

// Index is the mutable vector index contract.
//
// Implementations must guarantee that a search never observes a partially
// constructed entry, and that a failed mutation leaves the index unchanged.
type Index interface {
	// Insert stores a vector and returns the slot assigned to it.
	Insert(ctx context.Context, v []float32, seq uint64) (uint32, error)

	// Update replaces the vector stored at an existing slot.
	// The slot keeps its sequence number.
	Update(ctx context.Context, slot uint32, v []float32) error

	// Delete removes the vector stored at a slot.
	Delete(ctx context.Context, slot uint32) error

	// Search returns the k nearest entries to q, ascending by
	// (distance, sequence). k <= 0 yields an empty result.
	Search(ctx context.Context, q []float32, k int, opts *SearchOptions) ([]SearchResult, error)

	// VectorBySlot returns the vector stored at a slot.
	// The returned slice must not be modified by the caller.
	VectorBySlot(slot uint32) ([]float32, bool)

	// Count returns the number of live entries.
	Count() int

	// Dimension returns the fixed dimensionality of the index.
	Dimension() int

	// Metric returns the distance metric the index was created with.
	Metric() distance.Metric
}
