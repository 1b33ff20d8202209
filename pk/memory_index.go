package pk

import "sync"

// MemoryIndex is an in-memory bidirectional mapping between Keys and slots,
// backed by Go maps. It is safe for concurrent use.
type MemoryIndex struct {
	mu      sync.RWMutex
	forward map[Key]uint32
	reverse map[uint32]Key
}

// NewMemoryIndex creates a new in-memory key index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		forward: make(map[Key]uint32),
		reverse: make(map[uint32]Key),
	}
}

// Lookup returns the slot for the given key.
func (idx *MemoryIndex) Lookup(key Key) (uint32, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	slot, ok := idx.forward[key]
	return slot, ok
}

// KeyOf returns the key stored at the given slot.
func (idx *MemoryIndex) KeyOf(slot uint32) (Key, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	key, ok := idx.reverse[slot]
	return key, ok
}

// Upsert sets the slot for the given key, replacing both directions.
func (idx *MemoryIndex) Upsert(key Key, slot uint32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if old, ok := idx.forward[key]; ok {
		delete(idx.reverse, old)
	}
	idx.forward[key] = slot
	idx.reverse[slot] = key
}

// Delete removes the key from the index.
// It reports whether the key was present.
func (idx *MemoryIndex) Delete(key Key) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	slot, ok := idx.forward[key]
	if !ok {
		return false
	}
	delete(idx.forward, key)
	delete(idx.reverse, slot)
	return true
}

// Len returns the number of mapped keys.
func (idx *MemoryIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.forward)
}

// Range iterates over all (key, slot) pairs. The iteration order is
// unspecified. The callback must not mutate the index.
func (idx *MemoryIndex) Range(fn func(key Key, slot uint32) bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	for key, slot := range idx.forward {
		if !fn(key, slot) {
			return
		}
	}
}
