package queue

import "github.com/cuemby/taskbroker/pkg/types"

// taskHeap implements container/heap.Interface over types.Task pointers,
// ordered (−priority, seq): higher priority first, then submission order
// within equal priority. seq, not enqueued_at, breaks ties; see
// PriorityQueue.Enqueue.
type taskHeap []*types.Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].Seq < h[j].Seq
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) {
	*h = append(*h, x.(*types.Task))
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return task
}
