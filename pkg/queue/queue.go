package queue

import (
	"container/heap"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cuemby/taskbroker/pkg/types"
)

// PriorityQueue is the durable, priority-ordered store of pending tasks.
// It guards the heap and the persistence write with a single lock: an
// enqueue is only considered successful once its write to disk has
// completed.
type PriorityQueue struct {
	mu   sync.Mutex
	heap taskHeap
	path string
	seq  atomic.Int64
	log  zerolog.Logger
}

// New loads any persisted tasks from path (a missing file is an empty
// queue) and returns a ready PriorityQueue. Each task's original
// enqueued_at is preserved so timeouts keep counting from submission,
// not from this restart.
func New(path string, logger zerolog.Logger) (*PriorityQueue, error) {
	q := &PriorityQueue{path: path, log: logger}

	tasks, err := load(path, func() int64 { return q.seq.Add(1) })
	if err != nil {
		return nil, err
	}

	q.heap = make(taskHeap, len(tasks))
	copy(q.heap, tasks)
	heap.Init(&q.heap)
	return q, nil
}

// Enqueue assigns a fresh task ID and sequence number, inserts the task,
// and synchronously persists the full heap before returning. On a
// persistence failure the in-memory insertion is rolled back, so a task
// whose enqueue failed is never held in memory without being on disk.
func (q *PriorityQueue) Enqueue(priority int64, payload string, timeoutS float64) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	task := &types.Task{
		ID:         uuid.NewString(),
		Priority:   priority,
		Payload:    map[string]interface{}{"task": payload},
		TimeoutS:   timeoutS,
		EnqueuedAt: time.Now(),
		Seq:        q.seq.Add(1),
	}

	heap.Push(&q.heap, task)
	if err := save(q.path, q.heap); err != nil {
		heap.Remove(&q.heap, indexOf(q.heap, task))
		return "", err
	}

	return task.ID, nil
}

// Dequeue pops the highest-priority, earliest-submitted task. Tasks
// found expired at pop time are discarded (logged, not returned) and the
// scan continues; expired tasks are not written back to the persistence
// file, so their removal becomes durable at the next Enqueue. Returns
// nil when no unexpired task remains.
func (q *PriorityQueue) Dequeue() *types.Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	for q.heap.Len() > 0 {
		task := heap.Pop(&q.heap).(*types.Task)
		if task.Expired(now) {
			q.log.Info().Str("task_id", task.ID).Msg("discarding expired task")
			continue
		}
		return task
	}
	return nil
}

// Size returns the number of pending tasks currently held in memory.
func (q *PriorityQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.heap.Len()
}

func indexOf(h taskHeap, task *types.Task) int {
	for i, t := range h {
		if t == task {
			return i
		}
	}
	panic(fmt.Sprintf("queue: task %s not found in heap during rollback", task.ID))
}
