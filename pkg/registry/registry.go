package registry

import (
	"net"
	"sync"
	"time"

	"github.com/cuemby/taskbroker/pkg/types"
)

// Registry tracks connected workers, their in-flight task counts, and
// their liveness, all under a single lock.
type Registry struct {
	mu      sync.Mutex
	workers map[string]*types.Worker
	conns   map[string]net.Conn
	order   []string // insertion order, for deterministic least-loaded tie-breaks
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		workers: make(map[string]*types.Worker),
		conns:   make(map[string]net.Conn),
	}
}

// Register adds a new worker identified by id, associated with conn and
// address, with inflight=0 and last_heartbeat=now. Registering an id
// already present replaces its entry (a connection only registers once,
// on its first get_task).
func (r *Registry) Register(id, address string, conn net.Conn) *types.Worker {
	r.mu.Lock()
	defer r.mu.Unlock()

	w := &types.Worker{
		ID:            id,
		Address:       address,
		Inflight:      0,
		LastHeartbeat: time.Now(),
		State:         types.WorkerStateActive,
		RegisteredAt:  time.Now(),
	}
	if _, exists := r.workers[id]; !exists {
		r.order = append(r.order, id)
	}
	r.workers[id] = w
	r.conns[id] = conn
	return w
}

// Deregister removes a worker. Idempotent: removing an absent worker is
// a no-op.
func (r *Registry) Deregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(id)
}

// remove deletes a worker's bookkeeping. Caller must hold r.mu.
func (r *Registry) remove(id string) {
	if _, exists := r.workers[id]; !exists {
		return
	}
	delete(r.workers, id)
	delete(r.conns, id)
	for i, wid := range r.order {
		if wid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// BumpInflight increments a worker's in-flight task count.
func (r *Registry) BumpInflight(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.workers[id]; ok {
		w.Inflight++
	}
}

// DropInflight decrements a worker's in-flight task count, floored at 0.
func (r *Registry) DropInflight(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.workers[id]; ok && w.Inflight > 0 {
		w.Inflight--
	}
}

// Touch refreshes a worker's last_heartbeat to now.
func (r *Registry) Touch(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.workers[id]; ok {
		w.LastHeartbeat = time.Now()
	}
}

// Get returns the worker for id, if registered.
func (r *Registry) Get(id string) (*types.Worker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workers[id]
	return w, ok
}

// SelectLeastLoaded returns the live worker with the minimum Inflight
// count, breaking ties by insertion order. Not called by the current
// pull-model dispatcher (workers are handed tasks on request), but kept
// ready for a future push-assignment mode. Returns nil if no workers are
// registered.
func (r *Registry) SelectLeastLoaded() *types.Worker {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best *types.Worker
	for _, id := range r.order {
		w, ok := r.workers[id]
		if !ok {
			continue
		}
		if best == nil || w.Inflight < best.Inflight {
			best = w
		}
	}
	return best
}

// EvictStale removes every worker whose last_heartbeat is older than
// window, closing its connection, and returns their ids. Called by
// pkg/reaper's heartbeat sweep.
func (r *Registry) EvictStale(now time.Time, window time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []string
	for _, id := range append([]string(nil), r.order...) {
		w, ok := r.workers[id]
		if !ok || w.Alive(now, window) {
			continue
		}
		if conn, ok := r.conns[id]; ok {
			_ = conn.Close()
		}
		r.remove(id)
		evicted = append(evicted, id)
	}
	return evicted
}

// Size returns the number of registered workers.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workers)
}
