package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/cuemby/taskbroker/pkg/stats"
)

type fakeSizer struct{ n int }

func (f fakeSizer) Size() int { return f.n }

func TestCollectorCollect(t *testing.T) {
	counters := stats.New()
	counters.IncTasksAdded()
	counters.IncTasksAdded()
	counters.IncTasksAssigned()

	c := NewCollector(fakeSizer{n: 3}, fakeSizer{n: 2}, counters)
	c.Collect()

	assert.Equal(t, float64(3), testutil.ToFloat64(QueueSize))
	assert.Equal(t, float64(2), testutil.ToFloat64(WorkersTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(TasksAddedTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(TasksAssignedTotal))

	// A second collection with no counter movement should not double-count.
	c.Collect()
	assert.Equal(t, float64(2), testutil.ToFloat64(TasksAddedTotal))
}
