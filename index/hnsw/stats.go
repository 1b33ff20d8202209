package hnsw

// Stats describes the current shape of an HNSW graph.
type Stats struct {
	Count     int // live entries
	Tombstone int // deleted nodes still routing
	MaxLayer  int
}

// Stats returns a snapshot of the graph shape.
func (h *HNSW) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	tombstones := 0
	for _, n := range h.nodes {
		if n != nil && n.deleted {
			tombstones++
		}
	}
	return Stats{
		Count:     h.count,
		Tombstone: tombstones,
		MaxLayer:  h.maxLayer,
	}
}
