package pk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	u := Uint64Key(42)
	assert.Equal(t, KindUint64, u.Kind())
	v, ok := u.Uint64()
	require.True(t, ok)
	assert.Equal(t, uint64(42), v)
	_, ok = u.StringValue()
	assert.False(t, ok)
	assert.Equal(t, "42", u.String())

	s := StringKey("msg-7")
	assert.Equal(t, KindString, s.Kind())
	sv, ok := s.StringValue()
	require.True(t, ok)
	assert.Equal(t, "msg-7", sv)
	assert.Equal(t, "msg-7", s.String())

	var zero Key
	assert.True(t, zero.IsZero())
	assert.False(t, u.IsZero())

	// Integer and string keys never collide, even with equal spellings.
	assert.NotEqual(t, Uint64Key(7), StringKey("7"))
}

func TestMemoryIndex(t *testing.T) {
	idx := NewMemoryIndex()

	idx.Upsert(StringKey("a"), 0)
	idx.Upsert(Uint64Key(1), 1)

	slot, ok := idx.Lookup(StringKey("a"))
	require.True(t, ok)
	assert.Equal(t, uint32(0), slot)

	key, ok := idx.KeyOf(1)
	require.True(t, ok)
	assert.Equal(t, Uint64Key(1), key)

	_, ok = idx.Lookup(StringKey("missing"))
	assert.False(t, ok)

	t.Run("UpsertMovesSlot", func(t *testing.T) {
		idx.Upsert(StringKey("a"), 5)
		slot, ok := idx.Lookup(StringKey("a"))
		require.True(t, ok)
		assert.Equal(t, uint32(5), slot)
		_, ok = idx.KeyOf(0)
		assert.False(t, ok, "old reverse mapping must be dropped")
	})

	t.Run("Delete", func(t *testing.T) {
		assert.True(t, idx.Delete(StringKey("a")))
		assert.False(t, idx.Delete(StringKey("a")))
		_, ok := idx.KeyOf(5)
		assert.False(t, ok)
		assert.Equal(t, 1, idx.Len())
	})

	t.Run("Range", func(t *testing.T) {
		seen := 0
		idx.Range(func(Key, uint32) bool {
			seen++
			return true
		})
		assert.Equal(t, idx.Len(), seen)
	})
}
