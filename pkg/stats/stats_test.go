package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountersSnapshot(t *testing.T) {
	c := New()
	c.IncTasksAdded()
	c.IncTasksAdded()
	c.IncTasksAssigned()
	c.IncTasksCompleted()
	c.IncTasksCompleted()
	c.IncTasksCompleted()

	snap := c.Snapshot()
	assert.Equal(t, int64(2), snap.TasksAdded)
	assert.Equal(t, int64(1), snap.TasksAssigned)
	assert.Equal(t, int64(3), snap.TasksCompleted)
}

func TestCountersConcurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.IncTasksAdded()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), c.Snapshot().TasksAdded)
}
