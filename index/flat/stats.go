package flat

// Stats describes the current shape of a flat index.
type Stats struct {
	Count     int // live entries
	Allocated int // allocated slots, including tombstones
	Free      int // recyclable slots
}

// Stats returns a snapshot of the index shape.
func (f *Flat) Stats() Stats {
	st := f.state.Load()
	return Stats{
		Count:     st.count,
		Allocated: len(st.nodes),
		Free:      len(st.freeList),
	}
}
