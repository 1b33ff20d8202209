package metadata

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Store holds the metadata documents of an index keyed by slot, together
// with a Roaring-Bitmap inverted index over key=value pairs.
//
// Equality filters resolve through the bitmaps; range and substring filters
// fall back to evaluating the document. Store is not safe for concurrent
// mutation; the owning index serializes writes.
type Store struct {
	docs     map[uint32]Document
	inverted map[string]*roaring.Bitmap // "key\x00value.Key()" -> slots
}

// NewStore creates an empty metadata store.
func NewStore() *Store {
	return &Store{
		docs:     make(map[uint32]Document),
		inverted: make(map[string]*roaring.Bitmap),
	}
}

func invertedKey(key string, v Value) string {
	return key + "\x00" + v.Key()
}

// Set stores the document for a slot, replacing any previous document.
// The document is cloned; nil or empty documents clear the slot's metadata.
func (s *Store) Set(slot uint32, doc Document) {
	s.Delete(slot)
	doc = CloneIfNeeded(doc)
	if doc == nil {
		return
	}
	s.docs[slot] = doc
	for k, v := range doc {
		ik := invertedKey(k, v)
		bm, ok := s.inverted[ik]
		if !ok {
			bm = roaring.New()
			s.inverted[ik] = bm
		}
		bm.Add(slot)
	}
}

// Get returns the document for a slot, or nil if the slot has no metadata.
// The returned document must not be modified by the caller.
func (s *Store) Get(slot uint32) (Document, bool) {
	doc, ok := s.docs[slot]
	return doc, ok
}

// Delete removes the document for a slot.
func (s *Store) Delete(slot uint32) {
	doc, ok := s.docs[slot]
	if !ok {
		return
	}
	for k, v := range doc {
		ik := invertedKey(k, v)
		if bm, ok := s.inverted[ik]; ok {
			bm.Remove(slot)
			if bm.IsEmpty() {
				delete(s.inverted, ik)
			}
		}
	}
	delete(s.docs, slot)
}

// Len returns the number of slots carrying metadata.
func (s *Store) Len() int { return len(s.docs) }

// Matches reports whether the slot's document satisfies the filter set.
// Slots without metadata only match an empty filter set.
func (s *Store) Matches(slot uint32, fs *FilterSet) bool {
	if fs == nil || len(fs.Filters) == 0 {
		return true
	}
	doc, ok := s.docs[slot]
	if !ok {
		return false
	}
	return fs.Matches(doc)
}

// EqualitySlots resolves an equality filter through the inverted index and
// returns the matching slots, or nil and false if the filter is not a plain
// equality (the caller must then evaluate documents directly).
func (s *Store) EqualitySlots(f Filter) (*roaring.Bitmap, bool) {
	if f.Operator != OpEqual {
		return nil, false
	}
	bm, ok := s.inverted[invertedKey(f.Key, f.Value)]
	if !ok {
		return roaring.New(), true
	}
	return bm.Clone(), true
}

// Slots returns the slots eligible under the filter set as a bitmap, or nil
// and false when the set contains operators the inverted index cannot
// resolve. An all-equality set intersects bitmaps without touching documents.
func (s *Store) Slots(fs *FilterSet) (*roaring.Bitmap, bool) {
	if fs == nil || len(fs.Filters) == 0 {
		return nil, false
	}
	var acc *roaring.Bitmap
	for _, f := range fs.Filters {
		bm, ok := s.EqualitySlots(f)
		if !ok {
			return nil, false
		}
		if acc == nil {
			acc = bm
		} else {
			acc.And(bm)
		}
		if acc.IsEmpty() {
			break
		}
	}
	return acc, true
}

// Range iterates over all (slot, document) pairs.
func (s *Store) Range(fn func(slot uint32, doc Document) bool) {
	for slot, doc := range s.docs {
		if !fn(slot, doc) {
			return
		}
	}
}
