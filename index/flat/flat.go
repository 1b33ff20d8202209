// Package flat provides the exact brute-force vector index.
//
// It is the correctness baseline for vecidx: every search computes the
// distance to all live entries, so results are exact by construction.
package flat

import (
	"container/heap"
	"context"
	"math"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/vecidx/distance"
	"github.com/hupe1980/vecidx/index"
)

// Compile-time check to ensure Flat satisfies the index contract.
var _ index.Index = (*Flat)(nil)

// Options contains configuration options for the flat index.
type Options struct {
	// Dimension is the fixed vector dimensionality for this index.
	// It must be > 0 and is enforced for all inserts/updates/searches.
	Dimension int

	// Metric selects the distance function used for search.
	Metric distance.Metric
}

// DefaultOptions contains the default configuration options for the flat index.
var DefaultOptions = Options{
	Dimension: 0,
	Metric:    distance.MetricCosine,
}

// node is a live entry. Nodes are immutable once published: updates replace
// the node pointer so readers holding an older state never see a torn entry.
type node struct {
	seq    uint64
	vector []float32
}

// indexState holds the immutable state of the index for lock-free reads.
type indexState struct {
	nodes    []*node  // nil entries are tombstones
	freeList []uint32 // slots available for reuse from deleted nodes
	count    int
}

// Flat represents the exact brute-force index.
// It uses a copy-on-write pattern for lock-free concurrent reads.
type Flat struct {
	state        atomic.Pointer[indexState]
	writeMu      sync.Mutex // serializes writes only
	distanceFunc distance.Func
	opts         Options
}

// New creates a new flat index. Dimension and Metric are fixed at creation.
func New(optFns ...func(o *Options)) (*Flat, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := index.ValidateOptions(opts.Dimension, opts.Metric); err != nil {
		return nil, err
	}

	fn, err := distance.Provider(opts.Metric)
	if err != nil {
		return nil, err
	}

	f := &Flat{
		distanceFunc: fn,
		opts:         opts,
	}
	f.state.Store(&indexState{})

	return f, nil
}

// Name returns the index type name.
func (*Flat) Name() string { return "Flat" }

// Dimension returns the fixed dimensionality of the index.
func (f *Flat) Dimension() int { return f.opts.Dimension }

// Metric returns the distance metric the index was created with.
func (f *Flat) Metric() distance.Metric { return f.opts.Metric }

// Count returns the number of live entries.
func (f *Flat) Count() int { return f.state.Load().count }

func cloneState(st *indexState) *indexState {
	newNodes := make([]*node, len(st.nodes))
	copy(newNodes, st.nodes)

	newFreeList := make([]uint32, len(st.freeList))
	copy(newFreeList, st.freeList)

	return &indexState{
		nodes:    newNodes,
		freeList: newFreeList,
		count:    st.count,
	}
}

// Insert stores a vector and returns the slot assigned to it.
// The vector is copied; later caller mutation does not affect the index.
func (f *Flat) Insert(ctx context.Context, v []float32, seq uint64) (uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(v) != f.opts.Dimension {
		return 0, &index.ErrDimensionMismatch{Expected: f.opts.Dimension, Actual: len(v)}
	}

	vec := make([]float32, len(v))
	copy(vec, v)

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	newState := cloneState(f.state.Load())

	var slot uint32
	if n := len(newState.freeList); n > 0 {
		slot = newState.freeList[n-1]
		newState.freeList = newState.freeList[:n-1]
		newState.nodes[slot] = &node{seq: seq, vector: vec}
	} else {
		slot = uint32(len(newState.nodes))
		newState.nodes = append(newState.nodes, &node{seq: seq, vector: vec})
	}
	newState.count++

	f.state.Store(newState)
	return slot, nil
}

// Update replaces the vector stored at an existing slot, keeping its sequence.
func (f *Flat) Update(ctx context.Context, slot uint32, v []float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(v) != f.opts.Dimension {
		return &index.ErrDimensionMismatch{Expected: f.opts.Dimension, Actual: len(v)}
	}

	vec := make([]float32, len(v))
	copy(vec, v)

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	oldState := f.state.Load()
	if int(slot) >= len(oldState.nodes) || oldState.nodes[slot] == nil {
		return &index.ErrSlotNotFound{Slot: slot}
	}

	newState := cloneState(oldState)
	// Replace the node pointer rather than mutating it: readers may still
	// hold the previous immutable state.
	newState.nodes[slot] = &node{seq: oldState.nodes[slot].seq, vector: vec}

	f.state.Store(newState)
	return nil
}

// Delete removes the vector stored at a slot and recycles the slot.
func (f *Flat) Delete(ctx context.Context, slot uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	oldState := f.state.Load()
	if int(slot) >= len(oldState.nodes) || oldState.nodes[slot] == nil {
		return &index.ErrSlotNotFound{Slot: slot}
	}

	newState := cloneState(oldState)
	newState.nodes[slot] = nil
	newState.freeList = append(newState.freeList, slot)
	newState.count--

	f.state.Store(newState)
	return nil
}

// VectorBySlot returns the vector stored at a slot.
// The returned slice aliases index memory and must not be modified.
func (f *Flat) VectorBySlot(slot uint32) ([]float32, bool) {
	st := f.state.Load()
	if int(slot) >= len(st.nodes) || st.nodes[slot] == nil {
		return nil, false
	}
	return st.nodes[slot].vector, true
}

// Search performs an exact k-nearest-neighbor scan.
// Results are ordered by (distance, sequence) ascending; equal distances
// resolve to the earlier-inserted entry. k <= 0 yields an empty result.
func (f *Flat) Search(ctx context.Context, q []float32, k int, opts *index.SearchOptions) ([]index.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(q) != f.opts.Dimension {
		return nil, &index.ErrDimensionMismatch{Expected: f.opts.Dimension, Actual: len(q)}
	}
	if k <= 0 {
		return nil, nil
	}

	st := f.state.Load()
	if st.count == 0 {
		return nil, nil
	}

	var filter func(slot uint32) bool
	if opts != nil {
		filter = opts.Filter
	}

	// Euclidean ranks identically on squared distances; take the root only
	// for the k survivors.
	scan := f.distanceFunc
	sqrtAtEnd := false
	if f.opts.Metric == distance.MetricEuclidean {
		scan = distance.SquaredL2
		sqrtAtEnd = true
	}

	top := &resultHeap{}
	heap.Init(top)

	for slot, n := range st.nodes {
		if n == nil {
			continue
		}
		if filter != nil && !filter(uint32(slot)) {
			continue
		}

		res := index.SearchResult{
			Slot:     uint32(slot),
			Seq:      n.seq,
			Distance: scan(q, n.vector),
		}

		if top.Len() < k {
			heap.Push(top, res)
			continue
		}
		if res.Less((*top)[0]) {
			(*top)[0] = res
			heap.Fix(top, 0)
		}
	}

	results := make([]index.SearchResult, top.Len())
	for i := top.Len() - 1; i >= 0; i-- {
		results[i] = heap.Pop(top).(index.SearchResult)
	}
	if sqrtAtEnd {
		for i := range results {
			results[i].Distance = math.Sqrt(results[i].Distance)
		}
	}
	return results, nil
}

// resultHeap is a bounded max-heap: the root is the result that would be
// dropped first, i.e. the greatest by (distance, sequence).
type resultHeap []index.SearchResult

func (h resultHeap) Len() int           { return len(h) }
func (h resultHeap) Less(i, j int) bool { return h[j].Less(h[i]) }
func (h resultHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *resultHeap) Push(x any) {
	*h = append(*h, x.(index.SearchResult))
}

func (h *resultHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
