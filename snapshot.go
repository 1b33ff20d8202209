// Package vecidx provides an embedded vector similarity index.
//
// This file implements saving and loading snapshots through a blobstore.
package vecidx

import (
	"context"
	"fmt"
	"sort"

	"github.com/hupe1980/vecidx/blobstore"
	"github.com/hupe1980/vecidx/codec"
	"github.com/hupe1980/vecidx/index"
	"github.com/hupe1980/vecidx/index/flat"
	"github.com/hupe1980/vecidx/index/hnsw"
	"github.com/hupe1980/vecidx/pk"
	"github.com/hupe1980/vecidx/snapshot"
)

// SnapshotOptions controls how a snapshot is written.
type SnapshotOptions struct {
	// Compression selects the body compression.
	// Defaults to zstd.
	Compression snapshot.Compression
}

// SaveTo serializes the full index state into a snapshot blob named name.
// An existing blob of the same name is replaced.
//
// The snapshot is self-describing: LoadFrom restores the index kind,
// metric, dimension, codec and insertion order without extra arguments.
func (idx *Index[T]) SaveTo(ctx context.Context, store blobstore.BlobStore, name string, optFns ...func(o *SnapshotOptions)) error {
	opts := SnapshotOptions{Compression: snapshot.CompressionZstd}
	for _, fn := range optFns {
		fn(&opts)
	}

	records, err := idx.collectRecords()

	if err == nil {
		var data []byte

		data, err = snapshot.Encode(snapshot.Header{
			Codec:       idx.opts.codec.Name(),
			Compression: opts.Compression,
			Metric:      idx.metric,
			Dimension:   idx.dimension,
			IndexKind:   idx.kind,
			NextSeq:     idx.nextSeq.Load(),
		}, records)

		if err == nil {
			err = store.Put(ctx, name, data)
		}
	}

	idx.opts.logger.LogSnapshot(ctx, name, len(records), err)

	return err
}

// collectRecords drains every shard into portable records, sorted by
// insertion order.
func (idx *Index[T]) collectRecords() ([]snapshot.Record, error) {
	var records []snapshot.Record

	for _, s := range idx.shards {
		s.mu.RLock()

		var rangeErr error

		s.keys.Range(func(key pk.Key, slot uint32) bool {
			vector, ok := s.idx.VectorBySlot(slot)
			if !ok {
				rangeErr = fmt.Errorf("vecidx: no vector for slot %d", slot)
				return false
			}

			payload, err := idx.opts.codec.Marshal(s.entries[slot].data)
			if err != nil {
				rangeErr = err
				return false
			}

			doc, _ := s.meta.Get(slot)

			records = append(records, snapshot.Record{
				Key:      key,
				Seq:      s.entries[slot].seq,
				Vector:   vector,
				Metadata: doc,
				Payload:  payload,
			})

			return true
		})

		s.mu.RUnlock()

		if rangeErr != nil {
			return nil, rangeErr
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Seq < records[j].Seq })

	return records, nil
}

// LoadFrom restores an index from a snapshot blob written by SaveTo.
//
// The index kind, metric, dimension and codec come from the snapshot
// header; options configure the runtime concerns (shards, logger,
// metrics, embedder). HNSW graphs are rebuilt by re-inserting in the
// original insertion order, so tie-breaking is preserved.
func LoadFrom[T any](ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Index[T], error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = blob.Close() }()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return nil, err
	}

	header, records, err := snapshot.Decode(data)
	if err != nil {
		return nil, err
	}

	c, ok := codec.ByName(header.Codec)
	if !ok {
		return nil, fmt.Errorf("vecidx: unknown snapshot codec %q", header.Codec)
	}

	var factory func() (index.Index, error)

	switch header.IndexKind {
	case indexKindFlat:
		factory = func() (index.Index, error) {
			return flat.New(func(o *flat.Options) {
				o.Dimension = header.Dimension
				o.Metric = header.Metric
			})
		}
	case indexKindHNSW:
		factory = func() (index.Index, error) {
			return hnsw.New(func(o *hnsw.Options) {
				o.Dimension = header.Dimension
				o.Metric = header.Metric
			})
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndexKind, header.IndexKind)
	}

	optFns = append(optFns, WithCodec(c))

	idx, err := newIndex[T](header.IndexKind, header.Dimension, header.Metric, factory, optFns...)
	if err != nil {
		return nil, err
	}

	// Records are stored sorted by Seq; replay in that order so
	// equal-distance ties resolve exactly as before the snapshot.
	for _, rec := range records {
		if err := idx.restore(ctx, rec); err != nil {
			return nil, err
		}
	}

	idx.nextSeq.Store(header.NextSeq)

	idx.opts.logger.LogSnapshot(ctx, name, len(records), nil)

	return idx, nil
}

// restore inserts a snapshot record keeping its original sequence number.
func (idx *Index[T]) restore(ctx context.Context, rec snapshot.Record) error {
	var data T
	if len(rec.Payload) > 0 {
		if err := idx.opts.codec.Unmarshal(rec.Payload, &data); err != nil {
			return err
		}
	}

	s := idx.shardFor(rec.Key)

	s.mu.Lock()
	defer s.mu.Unlock()

	slot, err := s.idx.Insert(ctx, rec.Vector, rec.Seq)
	if err != nil {
		return translateError(err)
	}

	s.keys.Upsert(rec.Key, slot)
	s.meta.Set(slot, rec.Metadata)
	s.entries[slot] = stored[T]{data: data, seq: rec.Seq}

	return nil
}
