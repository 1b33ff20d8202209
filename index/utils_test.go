package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeSearchResults(t *testing.T) {
	a := []SearchResult{{Slot: 1, Seq: 1, Distance: 0.1}, {Slot: 3, Seq: 3, Distance: 0.5}}
	b := []SearchResult{{Slot: 2, Seq: 2, Distance: 0.2}, {Slot: 4, Seq: 4, Distance: 0.9}}

	t.Run("Interleaved", func(t *testing.T) {
		got := MergeSearchResults(a, b, 3)
		assert.Equal(t, []uint32{1, 2, 3}, slots(got))
	})

	t.Run("KLargerThanInputs", func(t *testing.T) {
		got := MergeSearchResults(a, b, 10)
		assert.Len(t, got, 4)
	})

	t.Run("EmptySides", func(t *testing.T) {
		assert.Equal(t, a, MergeSearchResults(a, nil, 10))
		assert.Equal(t, b, MergeSearchResults(nil, b, 10))
		assert.Empty(t, MergeSearchResults(nil, nil, 10))
	})

	t.Run("NonPositiveK", func(t *testing.T) {
		assert.Nil(t, MergeSearchResults(a, b, 0))
	})

	t.Run("TieBreaksBySeq", func(t *testing.T) {
		x := []SearchResult{{Slot: 9, Seq: 7, Distance: 0.3}}
		y := []SearchResult{{Slot: 8, Seq: 2, Distance: 0.3}}
		got := MergeSearchResults(x, y, 2)
		assert.Equal(t, []uint32{8, 9}, slots(got))
	})
}

func TestMergeNSearchResults(t *testing.T) {
	lists := [][]SearchResult{
		{{Slot: 1, Seq: 1, Distance: 0.4}},
		{{Slot: 2, Seq: 2, Distance: 0.1}},
		{{Slot: 3, Seq: 3, Distance: 0.2}, {Slot: 4, Seq: 4, Distance: 0.8}},
	}
	got := MergeNSearchResults(3, lists...)
	assert.Equal(t, []uint32{2, 3, 1}, slots(got))
}

func slots(results []SearchResult) []uint32 {
	out := make([]uint32, len(results))
	for i, r := range results {
		out[i] = r.Slot
	}
	return out
}
