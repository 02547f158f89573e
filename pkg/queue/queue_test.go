package queue

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) (*PriorityQueue, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	q, err := New(path, zerolog.Nop())
	require.NoError(t, err)
	return q, path
}

func TestPriorityOrdering(t *testing.T) {
	q, _ := newTestQueue(t)

	_, err := q.Enqueue(0, "low", 300)
	require.NoError(t, err)
	_, err = q.Enqueue(2, "hi", 300)
	require.NoError(t, err)
	_, err = q.Enqueue(1, "mid", 300)
	require.NoError(t, err)

	assert.Equal(t, "hi", q.Dequeue().Payload["task"])
	assert.Equal(t, "mid", q.Dequeue().Payload["task"])
	assert.Equal(t, "low", q.Dequeue().Payload["task"])
	assert.Nil(t, q.Dequeue())
}

func TestFIFOWithinPriority(t *testing.T) {
	q, _ := newTestQueue(t)

	_, err := q.Enqueue(1, "a", 300)
	require.NoError(t, err)
	_, err = q.Enqueue(1, "b", 300)
	require.NoError(t, err)

	assert.Equal(t, "a", q.Dequeue().Payload["task"])
	assert.Equal(t, "b", q.Dequeue().Payload["task"])
}

func TestTimeoutDiscard(t *testing.T) {
	q, _ := newTestQueue(t)

	_, err := q.Enqueue(0, "stale", 0.01)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	assert.Nil(t, q.Dequeue())
}

func TestPersistenceRoundTrip(t *testing.T) {
	q, path := newTestQueue(t)

	_, err := q.Enqueue(0, "a", 300)
	require.NoError(t, err)
	_, err = q.Enqueue(1, "b", 300)
	require.NoError(t, err)
	_, err = q.Enqueue(2, "c", 300)
	require.NoError(t, err)

	reloaded, err := New(path, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Size())

	assert.Equal(t, "c", reloaded.Dequeue().Payload["task"])
	assert.Equal(t, "b", reloaded.Dequeue().Payload["task"])
	assert.Equal(t, "a", reloaded.Dequeue().Payload["task"])
}

func TestFIFOSurvivesReloadAfterDequeue(t *testing.T) {
	q, path := newTestQueue(t)

	for _, payload := range []string{"a", "b", "c", "d", "e"} {
		_, err := q.Enqueue(1, payload, 300)
		require.NoError(t, err)
	}

	assert.Equal(t, "a", q.Dequeue().Payload["task"])

	reloaded, err := New(path, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 4, reloaded.Size())

	assert.Equal(t, "b", reloaded.Dequeue().Payload["task"])
	assert.Equal(t, "c", reloaded.Dequeue().Payload["task"])
	assert.Equal(t, "d", reloaded.Dequeue().Payload["task"])
	assert.Equal(t, "e", reloaded.Dequeue().Payload["task"])
}

func TestLoadMissingFileIsEmptyQueue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.json")
	q, err := New(path, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 0, q.Size())
}

func TestSize(t *testing.T) {
	q, _ := newTestQueue(t)
	assert.Equal(t, 0, q.Size())

	_, err := q.Enqueue(0, "a", 300)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Size())

	q.Dequeue()
	assert.Equal(t, 0, q.Size())
}
