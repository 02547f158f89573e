// Package stats tracks the broker's monotonic operation counters.
package stats

import "sync/atomic"

// Counters holds three named counters: tasks_added, tasks_assigned,
// tasks_completed. Each is an atomic.Int64 rather than a lock-guarded
// counter map, since plain atomics are cheaper and need no mutex for
// independent increments.
type Counters struct {
	tasksAdded     atomic.Int64
	tasksAssigned  atomic.Int64
	tasksCompleted atomic.Int64
}

// Snapshot is a point-in-time copy of the counters, suitable for logging
// or export without holding any lock.
type Snapshot struct {
	TasksAdded     int64
	TasksAssigned  int64
	TasksCompleted int64
}

// New returns a zeroed Counters.
func New() *Counters {
	return &Counters{}
}

func (c *Counters) IncTasksAdded()     { c.tasksAdded.Add(1) }
func (c *Counters) IncTasksAssigned()  { c.tasksAssigned.Add(1) }
func (c *Counters) IncTasksCompleted() { c.tasksCompleted.Add(1) }

// Snapshot reads all three counters. Since each is its own atomic.Int64,
// the three loads are independent, not a single atomic transaction;
// that's fine here since the counters are monitoring signals, not a
// consistency-sensitive quantity.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		TasksAdded:     c.tasksAdded.Load(),
		TasksAssigned:  c.tasksAssigned.Load(),
		TasksCompleted: c.tasksCompleted.Load(),
	}
}
