package vecidx

import (
	"context"
	"encoding/binary"
	"errors"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vecidx/distance"
	"github.com/hupe1980/vecidx/index"
	"github.com/hupe1980/vecidx/metadata"
	"github.com/hupe1980/vecidx/pk"
)

const (
	indexKindFlat = "flat"
	indexKindHNSW = "hnsw"
)

// Entry is the user-facing record stored under a key.
type Entry[T any] struct {
	// Vector is the embedding. Its length must match the index dimension.
	Vector []float32

	// Data is an arbitrary payload carried alongside the vector.
	Data T

	// Metadata holds filterable attributes. May be nil.
	Metadata metadata.Document
}

// SearchResult is a single query match, enriched with the entry's key,
// payload and metadata. Results order ascending by (Distance, insertion).
type SearchResult[T any] struct {
	Key      pk.Key
	Distance float64
	Data     T
	Metadata metadata.Document
}

// stored is the per-slot bookkeeping the index layer does not carry.
type stored[T any] struct {
	data T
	seq  uint64
}

// shard is an independently locked partition of the index. A key always
// maps to the same shard, so per-key operations contend only within it.
type shard[T any] struct {
	mu      sync.RWMutex
	idx     index.Index
	keys    *pk.MemoryIndex
	meta    *metadata.Store
	entries map[uint32]stored[T]
}

// Index is an embedded vector index mapping primary keys to entries.
//
// All methods are safe for concurrent use.
type Index[T any] struct {
	dimension int
	metric    distance.Metric
	kind      string
	shards    []*shard[T]
	nextSeq   atomic.Uint64
	opts      options
}

// newIndex builds the shard set. factory creates one index.Index per shard.
func newIndex[T any](kind string, dimension int, metric distance.Metric, factory func() (index.Index, error), optFns ...Option) (*Index[T], error) {
	opts := applyOptions(optFns)

	numShards := opts.numShards
	if numShards < 1 {
		numShards = 1
	}

	shards := make([]*shard[T], numShards)

	for i := range shards {
		inner, err := factory()
		if err != nil {
			return nil, translateError(err)
		}

		shards[i] = &shard[T]{
			idx:     inner,
			keys:    pk.NewMemoryIndex(),
			meta:    metadata.NewStore(),
			entries: make(map[uint32]stored[T]),
		}
	}

	return &Index[T]{
		dimension: dimension,
		metric:    metric,
		kind:      kind,
		shards:    shards,
		opts:      opts,
	}, nil
}

// Dimension returns the fixed vector dimensionality of the index.
func (idx *Index[T]) Dimension() int { return idx.dimension }

// Metric returns the distance metric the index was created with.
func (idx *Index[T]) Metric() distance.Metric { return idx.metric }

// Size returns the number of live entries across all shards.
func (idx *Index[T]) Size() int {
	total := 0

	for _, s := range idx.shards {
		s.mu.RLock()
		total += s.idx.Count()
		s.mu.RUnlock()
	}

	return total
}

// Insert stores entry under key. An existing key is replaced in place and
// keeps its original insertion order for tie-breaking; a new key is
// appended after everything inserted before it.
func (idx *Index[T]) Insert(ctx context.Context, key pk.Key, entry Entry[T]) error {
	start := time.Now()

	err := idx.insert(ctx, key, entry)

	idx.opts.metricsCollector.RecordInsert(time.Since(start), err)
	idx.opts.logger.LogInsert(ctx, key.String(), len(entry.Vector), err)

	return err
}

func (idx *Index[T]) insert(ctx context.Context, key pk.Key, entry Entry[T]) error {
	return idx.insertInto(ctx, idx.shardFor(key), key, entry, 0)
}

// insertInto performs an upsert on a specific shard. seq is the
// pre-assigned sequence number for a new entry; zero allocates one on
// demand. Existing keys keep their original sequence either way.
func (idx *Index[T]) insertInto(ctx context.Context, s *shard[T], key pk.Key, entry Entry[T], seq uint64) error {
	if key.IsZero() {
		return ErrZeroKey
	}

	if len(entry.Vector) != idx.dimension {
		return &ErrDimensionMismatch{Expected: idx.dimension, Actual: len(entry.Vector)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if slot, ok := s.keys.Lookup(key); ok {
		if err := s.idx.Update(ctx, slot, entry.Vector); err != nil {
			return translateError(err)
		}

		s.meta.Set(slot, entry.Metadata)
		s.entries[slot] = stored[T]{data: entry.Data, seq: s.entries[slot].seq}

		return nil
	}

	if seq == 0 {
		seq = idx.nextSeq.Add(1)
	}

	slot, err := s.idx.Insert(ctx, entry.Vector, seq)
	if err != nil {
		return translateError(err)
	}

	s.keys.Upsert(key, slot)
	s.meta.Set(slot, entry.Metadata)
	s.entries[slot] = stored[T]{data: entry.Data, seq: seq}

	return nil
}

// InsertText embeds text with the configured embedder and stores the
// resulting vector under key. Requires WithEmbedder.
func (idx *Index[T]) InsertText(ctx context.Context, key pk.Key, text string, data T, doc metadata.Document) error {
	if idx.opts.embedder == nil {
		return ErrNoEmbedder
	}

	vector, err := idx.opts.embedder.Embed(ctx, text)
	if err != nil {
		return err
	}

	return idx.Insert(ctx, key, Entry[T]{Vector: vector, Data: data, Metadata: doc})
}

// BatchItem pairs a key with its entry for BatchInsert.
type BatchItem[T any] struct {
	Key   pk.Key
	Entry Entry[T]
}

// BatchInsert stores items, parallelizing across shards. Items earlier in
// the slice receive earlier insertion order: sequence numbers are assigned
// in slice order before the shards fan out. Failed items are skipped; the
// joined errors are returned and successful items remain stored.
func (idx *Index[T]) BatchInsert(ctx context.Context, items []BatchItem[T]) error {
	start := time.Now()

	type batchOp struct {
		item BatchItem[T]
		seq  uint64
	}

	grouped := make(map[*shard[T]][]batchOp)
	for _, item := range items {
		s := idx.shardFor(item.Key)
		grouped[s] = append(grouped[s], batchOp{item: item, seq: idx.nextSeq.Add(1)})
	}

	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)

	for s, batch := range grouped {
		g.Go(func() error {
			for _, op := range batch {
				if err := idx.insertInto(gctx, s, op.item.Key, op.item.Entry, op.seq); err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			}

			return nil
		})
	}

	_ = g.Wait()

	idx.opts.metricsCollector.RecordBatchInsert(len(items), len(errs), time.Since(start))
	idx.opts.logger.LogBatchInsert(ctx, len(items), len(errs))

	return errors.Join(errs...)
}

// Get returns the entry stored under key.
func (idx *Index[T]) Get(key pk.Key) (Entry[T], bool) {
	s := idx.shardFor(key)

	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.keys.Lookup(key)
	if !ok {
		return Entry[T]{}, false
	}

	vector, ok := s.idx.VectorBySlot(slot)
	if !ok {
		return Entry[T]{}, false
	}

	// Copy so callers cannot mutate index internals.
	out := make([]float32, len(vector))
	copy(out, vector)

	doc, _ := s.meta.Get(slot)

	return Entry[T]{Vector: out, Data: s.entries[slot].data, Metadata: doc}, true
}

// Remove deletes the entry stored under key and reports whether it
// existed. A later reinsert of the same key receives a fresh insertion
// order, after everything inserted in between.
func (idx *Index[T]) Remove(ctx context.Context, key pk.Key) (bool, error) {
	start := time.Now()

	s := idx.shardFor(key)

	s.mu.Lock()

	removed := false

	var err error

	if slot, ok := s.keys.Lookup(key); ok {
		if err = translateError(s.idx.Delete(ctx, slot)); err == nil {
			s.keys.Delete(key)
			s.meta.Delete(slot)
			delete(s.entries, slot)
			removed = true
		}
	}

	s.mu.Unlock()

	idx.opts.metricsCollector.RecordRemove(time.Since(start), removed)
	idx.opts.logger.LogRemove(ctx, key.String(), removed)

	return removed, err
}

// queryOptions carries the parameters collected by the search builder.
type queryOptions struct {
	k              int
	ef             int
	filters        *metadata.FilterSet
	maxDistance    float64
	hasMaxDistance bool
}

// enriched is what a shard knows about a match beyond the raw result.
type enriched[T any] struct {
	key  pk.Key
	data T
	meta metadata.Document
}

// query fans the search out over the shards and merges the per-shard
// results into a single ascending (distance, insertion order) list.
func (idx *Index[T]) query(ctx context.Context, q []float32, opts queryOptions) ([]SearchResult[T], error) {
	start := time.Now()

	results, err := idx.doQuery(ctx, q, opts)

	idx.opts.metricsCollector.RecordSearch(opts.k, time.Since(start), err)
	idx.opts.logger.LogSearch(ctx, opts.k, len(results), err)

	return results, err
}

func (idx *Index[T]) doQuery(ctx context.Context, q []float32, opts queryOptions) ([]SearchResult[T], error) {
	if opts.k <= 0 {
		return nil, nil
	}

	if len(q) != idx.dimension {
		return nil, &ErrDimensionMismatch{Expected: idx.dimension, Actual: len(q)}
	}

	lists := make([][]index.SearchResult, len(idx.shards))
	infos := make([]map[uint64]enriched[T], len(idx.shards))

	g, gctx := errgroup.WithContext(ctx)

	for i, s := range idx.shards {
		g.Go(func() error {
			matches, info, err := s.search(gctx, q, opts)
			if err != nil {
				return err
			}

			lists[i], infos[i] = matches, info

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, translateError(err)
	}

	merged := index.MergeNSearchResults(opts.k, lists...)

	results := make([]SearchResult[T], 0, len(merged))

	for _, m := range merged {
		if opts.hasMaxDistance && m.Distance > opts.maxDistance {
			break // merged is ascending by distance
		}

		// Slots collide across shards; Seq is globally unique.
		var e enriched[T]

		for _, info := range infos {
			if v, ok := info[m.Seq]; ok {
				e = v
				break
			}
		}

		results = append(results, SearchResult[T]{
			Key:      e.key,
			Distance: m.Distance,
			Data:     e.data,
			Metadata: e.meta,
		})
	}

	return results, nil
}

func (s *shard[T]) search(ctx context.Context, q []float32, opts queryOptions) ([]index.SearchResult, map[uint64]enriched[T], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filter func(slot uint32) bool

	if opts.filters != nil && len(opts.filters.Filters) > 0 {
		if bitmap, ok := s.meta.Slots(opts.filters); ok {
			filter = bitmap.Contains
		} else {
			filter = func(slot uint32) bool {
				return s.meta.Matches(slot, opts.filters)
			}
		}
	}

	matches, err := s.idx.Search(ctx, q, opts.k, &index.SearchOptions{Filter: filter, EF: opts.ef})
	if err != nil {
		return nil, nil, err
	}

	info := make(map[uint64]enriched[T], len(matches))

	for _, m := range matches {
		key, _ := s.keys.KeyOf(m.Slot)
		doc, _ := s.meta.Get(m.Slot)
		info[m.Seq] = enriched[T]{key: key, data: s.entries[m.Slot].data, meta: doc}
	}

	return matches, info, nil
}

func (idx *Index[T]) shardFor(key pk.Key) *shard[T] {
	if len(idx.shards) == 1 {
		return idx.shards[0]
	}

	h := fnv.New64a()

	switch key.Kind() {
	case pk.KindUint64:
		v, _ := key.Uint64()

		var buf [8]byte

		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	case pk.KindString:
		s, _ := key.StringValue()
		_, _ = h.Write([]byte(s))
	}

	return idx.shards[h.Sum64()%uint64(len(idx.shards))]
}
