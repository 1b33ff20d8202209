// Package hnsw provides an approximate vector index based on the
// Hierarchical Navigable Small World graph (Malkov & Yashunin).
//
// HNSW trades exactness for sub-linear search: recall is tunable via the
// exploration factor but not guaranteed. It is an explicit opt-in; the flat
// index remains the default and the correctness baseline.
package hnsw

import (
	"container/heap"
	"context"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/hupe1980/vecidx/distance"
	"github.com/hupe1980/vecidx/index"
)

// Compile-time check to ensure HNSW satisfies the index contract.
var _ index.Index = (*HNSW)(nil)

// Options contains configuration options for the HNSW index.
type Options struct {
	// Dimension is the fixed vector dimensionality for this index.
	Dimension int

	// Metric selects the distance function used for search.
	Metric distance.Metric

	// M is the number of established connections per element and layer.
	// The range 12-48 works for most datasets; higher M suits
	// high-dimensional data at the cost of memory.
	M int

	// EFConstruction is the size of the dynamic candidate list while
	// building the graph. Larger values improve graph quality and slow
	// down inserts.
	EFConstruction int

	// EFSearch is the default size of the dynamic candidate list during
	// search. It can be overridden per query and is clamped to at least k.
	EFSearch int

	// Seed seeds level generation. Zero picks a random seed; fix it for
	// reproducible graphs in tests.
	Seed uint64
}

// DefaultOptions contains the default configuration options for the HNSW index.
var DefaultOptions = Options{
	Dimension:      0,
	Metric:         distance.MetricCosine,
	M:              16,
	EFConstruction: 200,
	EFSearch:       100,
}

// node is a vertex in the graph. Deleted nodes stay as routing waypoints
// (tombstones) and are skipped in results.
type node struct {
	seq         uint64
	vector      []float32
	layer       int
	connections [][]uint32 // per layer
	deleted     bool
}

// HNSW represents the hierarchical navigable small world graph.
//
// A single RWMutex guards the graph: searches take the read lock, mutations
// the write lock. This satisfies the exclusive-writer / concurrent-reader
// contract without the copy-on-write machinery the flat index uses, which
// does not extend to incremental graph edits.
type HNSW struct {
	mu           sync.RWMutex
	nodes        []*node
	entryPoint   int // -1 while empty
	maxLayer     int
	count        int
	ml           float64 // normalization factor for level generation
	rng          *rand.Rand
	distanceFunc distance.Func
	opts         Options
}

// New creates a new HNSW index. Dimension and Metric are fixed at creation.
func New(optFns ...func(o *Options)) (*HNSW, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := index.ValidateOptions(opts.Dimension, opts.Metric); err != nil {
		return nil, err
	}
	if opts.M < 2 {
		// M == 1 would make the level normalization factor divide by zero.
		opts.M = 2
	}
	if opts.EFConstruction < opts.M {
		opts.EFConstruction = opts.M
	}

	fn, err := distance.Provider(opts.Metric)
	if err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	return &HNSW{
		entryPoint:   -1,
		ml:           1 / math.Log(float64(opts.M)),
		rng:          rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		distanceFunc: fn,
		opts:         opts,
	}, nil
}

// Name returns the index type name.
func (*HNSW) Name() string { return "HNSW" }

// Dimension returns the fixed dimensionality of the index.
func (h *HNSW) Dimension() int { return h.opts.Dimension }

// Metric returns the distance metric the index was created with.
func (h *HNSW) Metric() distance.Metric { return h.opts.Metric }

// Count returns the number of live entries.
func (h *HNSW) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// VectorBySlot returns the vector stored at a slot.
// The returned slice must not be modified by the caller.
func (h *HNSW) VectorBySlot(slot uint32) ([]float32, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if int(slot) >= len(h.nodes) {
		return nil, false
	}
	n := h.nodes[slot]
	if n == nil || n.deleted {
		return nil, false
	}
	return n.vector, true
}

// Insert adds a vector to the graph and returns the slot assigned to it.
func (h *HNSW) Insert(ctx context.Context, v []float32, seq uint64) (uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(v) != h.opts.Dimension {
		return 0, &index.ErrDimensionMismatch{Expected: h.opts.Dimension, Actual: len(v)}
	}

	vec := make([]float32, len(v))
	copy(vec, v)

	h.mu.Lock()
	defer h.mu.Unlock()

	layer := int(math.Floor(-math.Log(h.rng.Float64()) * h.ml))

	slot := uint32(len(h.nodes))
	n := &node{
		seq:         seq,
		vector:      vec,
		layer:       layer,
		connections: make([][]uint32, layer+1),
	}
	h.nodes = append(h.nodes, n)
	h.count++

	if h.entryPoint < 0 {
		h.entryPoint = int(slot)
		h.maxLayer = layer
		return slot, nil
	}

	curr := uint32(h.entryPoint)
	currDist := h.distanceFunc(vec, h.nodes[curr].vector)

	// Greedy descent through the layers above the new node's top layer.
	for l := h.maxLayer; l > layer; l-- {
		curr, currDist = h.greedyClosest(vec, curr, currDist, l)
	}

	// Link into every layer at or below the node's top layer.
	for l := min(layer, h.maxLayer); l >= 0; l-- {
		candidates := h.searchLayer(vec, curr, currDist, h.opts.EFConstruction, l)
		neighbors := h.selectNeighbors(candidates, h.opts.M)

		n.connections[l] = neighbors
		for _, nb := range neighbors {
			h.link(nb, slot, l)
		}

		if len(neighbors) > 0 {
			curr = neighbors[0]
			currDist = h.distanceFunc(vec, h.nodes[curr].vector)
		}
	}

	if layer > h.maxLayer {
		h.entryPoint = int(slot)
		h.maxLayer = layer
	}

	return slot, nil
}

// Update replaces the vector stored at an existing slot, keeping its
// sequence. The graph edges are not rebuilt; heavily updated graphs lose
// recall and should be reconstructed.
func (h *HNSW) Update(ctx context.Context, slot uint32, v []float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(v) != h.opts.Dimension {
		return &index.ErrDimensionMismatch{Expected: h.opts.Dimension, Actual: len(v)}
	}

	vec := make([]float32, len(v))
	copy(vec, v)

	h.mu.Lock()
	defer h.mu.Unlock()

	if int(slot) >= len(h.nodes) || h.nodes[slot] == nil || h.nodes[slot].deleted {
		return &index.ErrSlotNotFound{Slot: slot}
	}
	h.nodes[slot].vector = vec
	return nil
}

// Delete tombstones the slot. The node keeps routing traffic through the
// graph but never appears in results.
func (h *HNSW) Delete(ctx context.Context, slot uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if int(slot) >= len(h.nodes) || h.nodes[slot] == nil || h.nodes[slot].deleted {
		return &index.ErrSlotNotFound{Slot: slot}
	}
	h.nodes[slot].deleted = true
	h.count--
	return nil
}

// Search performs an approximate k-nearest-neighbor search.
// Results are ordered by (distance, sequence) ascending. Recall depends on
// EF (opts.EF, defaulting to EFSearch, clamped to at least k).
func (h *HNSW) Search(ctx context.Context, q []float32, k int, opts *index.SearchOptions) ([]index.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(q) != h.opts.Dimension {
		return nil, &index.ErrDimensionMismatch{Expected: h.opts.Dimension, Actual: len(q)}
	}
	if k <= 0 {
		return nil, nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.entryPoint < 0 || h.count == 0 {
		return nil, nil
	}

	ef := h.opts.EFSearch
	var filter func(slot uint32) bool
	if opts != nil {
		if opts.EF > 0 {
			ef = opts.EF
		}
		filter = opts.Filter
	}
	if ef < k {
		ef = k
	}

	curr := uint32(h.entryPoint)
	currDist := h.distanceFunc(q, h.nodes[curr].vector)
	for l := h.maxLayer; l > 0; l-- {
		curr, currDist = h.greedyClosest(q, curr, currDist, l)
	}

	candidates := h.searchLayer(q, curr, currDist, ef, 0)

	results := make([]index.SearchResult, 0, len(candidates.items))
	for _, item := range candidates.items {
		n := h.nodes[item.slot]
		if n.deleted {
			continue
		}
		if filter != nil && !filter(item.slot) {
			continue
		}
		results = append(results, index.SearchResult{
			Slot:     item.slot,
			Seq:      n.seq,
			Distance: item.distance,
		})
	}

	sortResults(results)
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// greedyClosest walks layer l from start toward q until no neighbor improves
// the distance.
func (h *HNSW) greedyClosest(q []float32, start uint32, startDist float64, l int) (uint32, float64) {
	curr, currDist := start, startDist
	for changed := true; changed; {
		changed = false
		n := h.nodes[curr]
		if l >= len(n.connections) {
			break
		}
		for _, nb := range n.connections[l] {
			d := h.distanceFunc(q, h.nodes[nb].vector)
			if d < currDist {
				curr, currDist = nb, d
				changed = true
			}
		}
	}
	return curr, currDist
}

// searchLayer runs the ef-bounded best-first search on a single layer and
// returns a max-heap of the ef closest vertices found.
func (h *HNSW) searchLayer(q []float32, ep uint32, epDist float64, ef int, l int) *priorityQueue {
	visited := make(map[uint32]struct{}, ef*4)
	visited[ep] = struct{}{}

	candidates := &priorityQueue{}
	heap.Init(candidates)
	heap.Push(candidates, queueItem{slot: ep, distance: epDist})

	top := &priorityQueue{Max: true}
	heap.Init(top)
	heap.Push(top, queueItem{slot: ep, distance: epDist})

	for candidates.Len() > 0 {
		c := heap.Pop(candidates).(queueItem)
		if c.distance > top.Top().distance && top.Len() >= ef {
			break
		}

		n := h.nodes[c.slot]
		if l >= len(n.connections) {
			continue
		}
		for _, nb := range n.connections[l] {
			if _, seen := visited[nb]; seen {
				continue
			}
			visited[nb] = struct{}{}

			d := h.distanceFunc(q, h.nodes[nb].vector)
			if top.Len() < ef {
				heap.Push(top, queueItem{slot: nb, distance: d})
				heap.Push(candidates, queueItem{slot: nb, distance: d})
			} else if d < top.Top().distance {
				heap.Pop(top)
				heap.Push(top, queueItem{slot: nb, distance: d})
				heap.Push(candidates, queueItem{slot: nb, distance: d})
			}
		}
	}

	return top
}

// selectNeighbors keeps the m closest candidates, closest first.
func (h *HNSW) selectNeighbors(candidates *priorityQueue, m int) []uint32 {
	for candidates.Len() > m {
		heap.Pop(candidates)
	}
	out := make([]uint32, candidates.Len())
	for i := candidates.Len() - 1; i >= 0; i-- {
		out[i] = heap.Pop(candidates).(queueItem).slot
	}
	return out
}

// link connects from -> to on layer l, pruning back to the connection cap.
func (h *HNSW) link(from, to uint32, l int) {
	maxConn := h.opts.M
	if l == 0 {
		// The bottom layer allows double the connections.
		maxConn = 2 * h.opts.M
	}

	n := h.nodes[from]
	if l >= len(n.connections) {
		return
	}
	n.connections[l] = append(n.connections[l], to)
	if len(n.connections[l]) <= maxConn {
		return
	}

	// Over capacity: keep the maxConn closest neighbors.
	pruned := &priorityQueue{Max: true}
	heap.Init(pruned)
	for _, nb := range n.connections[l] {
		d := h.distanceFunc(n.vector, h.nodes[nb].vector)
		if pruned.Len() < maxConn {
			heap.Push(pruned, queueItem{slot: nb, distance: d})
		} else if d < pruned.Top().distance {
			heap.Pop(pruned)
			heap.Push(pruned, queueItem{slot: nb, distance: d})
		}
	}

	conns := make([]uint32, pruned.Len())
	for i := pruned.Len() - 1; i >= 0; i-- {
		conns[i] = heap.Pop(pruned).(queueItem).slot
	}
	n.connections[l] = conns
}

func sortResults(results []index.SearchResult) {
	// Insertion sort: result lists are ef-bounded and nearly sorted.
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].Less(results[j-1]); j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}
}
