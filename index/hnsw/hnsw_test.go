package hnsw

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecidx/distance"
	"github.com/hupe1980/vecidx/index"
)

func newTestIndex(t *testing.T, dim int, m distance.Metric) *HNSW {
	t.Helper()
	h, err := New(func(o *Options) {
		o.Dimension = dim
		o.Metric = m
		o.Seed = 42
	})
	require.NoError(t, err)
	return h
}

func TestNew(t *testing.T) {
	t.Run("InvalidDimension", func(t *testing.T) {
		_, err := New(func(o *Options) { o.Dimension = -1 })
		var id *index.ErrInvalidDimension
		require.ErrorAs(t, err, &id)
	})

	t.Run("ClampsM", func(t *testing.T) {
		h, err := New(func(o *Options) {
			o.Dimension = 4
			o.M = 1
		})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, h.opts.M, 2)
	})
}

func TestInsertAndSearch(t *testing.T) {
	ctx := context.Background()
	h := newTestIndex(t, 3, distance.MetricCosine)

	a, err := h.Insert(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	_, err = h.Insert(ctx, []float32{0, 1, 0}, 2)
	require.NoError(t, err)
	c, err := h.Insert(ctx, []float32{1, 0, 0.001}, 3)
	require.NoError(t, err)

	results, err := h.Search(ctx, []float32{1, 0, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, a, results[0].Slot, "exact match must rank first")
	assert.Equal(t, 0.0, results[0].Distance)
	assert.Equal(t, c, results[1].Slot)
}

func TestDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	h := newTestIndex(t, 3, distance.MetricEuclidean)

	var dm *index.ErrDimensionMismatch
	_, err := h.Insert(ctx, []float32{1, 2}, 1)
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 0, h.Count())

	_, err = h.Search(ctx, []float32{1, 2}, 1, nil)
	require.ErrorAs(t, err, &dm)
}

func TestEmptyAndNonPositiveK(t *testing.T) {
	ctx := context.Background()
	h := newTestIndex(t, 2, distance.MetricCosine)

	results, err := h.Search(ctx, []float32{1, 0}, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = h.Insert(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)

	results, err = h.Search(ctx, []float32{1, 0}, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	h := newTestIndex(t, 2, distance.MetricEuclidean)

	slot, err := h.Insert(ctx, []float32{1, 1}, 1)
	require.NoError(t, err)
	_, err = h.Insert(ctx, []float32{5, 5}, 2)
	require.NoError(t, err)

	require.NoError(t, h.Delete(ctx, slot))
	assert.Equal(t, 1, h.Count())

	var nf *index.ErrSlotNotFound
	require.ErrorAs(t, h.Delete(ctx, slot), &nf)

	results, err := h.Search(ctx, []float32{1, 1}, 5, nil)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, slot, r.Slot, "tombstoned slot must not surface")
	}

	st := h.Stats()
	assert.Equal(t, 1, st.Count)
	assert.Equal(t, 1, st.Tombstone)
}

func TestFilter(t *testing.T) {
	ctx := context.Background()
	h := newTestIndex(t, 2, distance.MetricEuclidean)

	near, err := h.Insert(ctx, []float32{0, 0}, 1)
	require.NoError(t, err)
	far, err := h.Insert(ctx, []float32{3, 3}, 2)
	require.NoError(t, err)

	results, err := h.Search(ctx, []float32{0, 0}, 2, &index.SearchOptions{
		Filter: func(slot uint32) bool { return slot != near },
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, far, results[0].Slot)
}

func TestRecallAgainstBruteForce(t *testing.T) {
	ctx := context.Background()
	const (
		dim = 8
		n   = 500
		k   = 10
	)

	h := newTestIndex(t, dim, distance.MetricEuclidean)
	rng := rand.New(rand.NewPCG(7, 7))

	vectors := make([][]float32, n)
	for i := range vectors {
		v := make([]float32, dim)
		for j := range v {
			v[j] = rng.Float32()
		}
		vectors[i] = v
		_, err := h.Insert(ctx, v, uint64(i+1))
		require.NoError(t, err)
	}

	query := make([]float32, dim)
	for j := range query {
		query[j] = rng.Float32()
	}

	// Exact top-k by linear scan.
	type pair struct {
		slot uint32
		d    float64
	}
	exact := make([]pair, n)
	for i, v := range vectors {
		exact[i] = pair{slot: uint32(i), d: distance.Euclidean(query, v)}
	}
	for i := 1; i < len(exact); i++ {
		for j := i; j > 0 && exact[j].d < exact[j-1].d; j-- {
			exact[j], exact[j-1] = exact[j-1], exact[j]
		}
	}
	want := make(map[uint32]struct{}, k)
	for _, p := range exact[:k] {
		want[p.slot] = struct{}{}
	}

	results, err := h.Search(ctx, query, k, &index.SearchOptions{EF: 200})
	require.NoError(t, err)
	require.Len(t, results, k)

	hits := 0
	for _, r := range results {
		if _, ok := want[r.Slot]; ok {
			hits++
		}
	}
	// With EF=200 over 500 points recall should be essentially perfect;
	// allow one miss to keep the test stable.
	assert.GreaterOrEqual(t, hits, k-1)
}
