package metrics

import (
	"github.com/cuemby/taskbroker/pkg/stats"
)

// Sizer reports a current size; pkg/queue.PriorityQueue and
// pkg/registry.Registry both satisfy it via Size().
type Sizer interface {
	Size() int
}

// Collector keeps the queue-size and worker-count gauges current
// between scrapes and mirrors the stats counters into their Prometheus
// equivalents. It holds no goroutine of its own; pkg/reaper's stats
// sweep drives Collect on its existing ticker, so every background loop
// in the broker shares one cancellable scheduling mechanism instead of
// each owning an ad-hoc timer.
type Collector struct {
	queue    Sizer
	registry Sizer
	counters *stats.Counters
	last     stats.Snapshot
}

// NewCollector builds a Collector over queue and registry size sources
// and the shared stats counters.
func NewCollector(queue, registry Sizer, counters *stats.Counters) *Collector {
	return &Collector{queue: queue, registry: registry, counters: counters}
}

// Collect samples the queue and registry sizes into their gauges and
// advances the Prometheus counters by the delta since the last call.
func (c *Collector) Collect() {
	QueueSize.Set(float64(c.queue.Size()))
	WorkersTotal.Set(float64(c.registry.Size()))

	snap := c.counters.Snapshot()
	if delta := snap.TasksAdded - c.last.TasksAdded; delta > 0 {
		TasksAddedTotal.Add(float64(delta))
	}
	if delta := snap.TasksAssigned - c.last.TasksAssigned; delta > 0 {
		TasksAssignedTotal.Add(float64(delta))
	}
	if delta := snap.TasksCompleted - c.last.TasksCompleted; delta > 0 {
		TasksCompletedTotal.Add(float64(delta))
	}
	c.last = snap
}
