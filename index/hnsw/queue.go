package hnsw

// priorityQueue is a heap of search candidates. With Max unset it is a
// min-heap (closest first); with Max set it is a max-heap (farthest first),
// used to cap the dynamic candidate list.
type priorityQueue struct {
	items []queueItem
	Max   bool
}

type queueItem struct {
	slot     uint32
	distance float64
}

func (pq *priorityQueue) Len() int { return len(pq.items) }

func (pq *priorityQueue) Less(i, j int) bool {
	if pq.Max {
		return pq.items[i].distance > pq.items[j].distance
	}
	return pq.items[i].distance < pq.items[j].distance
}

func (pq *priorityQueue) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
}

func (pq *priorityQueue) Push(x any) {
	pq.items = append(pq.items, x.(queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := pq.items
	n := len(old)
	x := old[n-1]
	pq.items = old[:n-1]
	return x
}

// Top returns the root item without removing it.
func (pq *priorityQueue) Top() queueItem { return pq.items[0] }
