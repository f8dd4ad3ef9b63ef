package rls

// candidate is one scored 4-anchor set a node could request to join.
// Higher Score is better.
type candidate struct {
	Score           float64
	New, N1, N2, N3 string
}

// candidateHeap is a max-heap on Score (Less is inverted; container/heap
// itself only knows min-heaps).
type candidateHeap []candidate

func (h candidateHeap) Len() int            { return len(h) }
func (h candidateHeap) Less(i, j int) bool  { return h[i].Score > h[j].Score }
func (h candidateHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x interface{}) { *h = append(*h, x.(candidate)) }
func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
