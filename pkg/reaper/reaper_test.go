package reaper

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/cuemby/taskbroker/pkg/registry"
	"github.com/cuemby/taskbroker/pkg/stats"
)

type recordingSink struct {
	mu   sync.Mutex
	got  []stats.Snapshot
	seen int
}

func (s *recordingSink) Observe(snap stats.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, snap)
	s.seen++
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen
}

func testConn(t *testing.T) net.Conn {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close(); server.Close() })
	return server
}

func TestHeartbeatSweepEvictsStaleWorker(t *testing.T) {
	reg := registry.New()
	reg.Register("w1", "addr", testConn(t))
	w, _ := reg.Get("w1")
	w.LastHeartbeat = time.Now().Add(-time.Hour)

	cfg := Config{
		HeartbeatInterval: 5 * time.Millisecond,
		LivenessWindow:    10 * time.Millisecond,
		StatsInterval:     time.Hour,
	}
	r := New(cfg, reg, stats.New(), zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	r.Run(ctx)

	assert.Equal(t, 0, reg.Size())
}

func TestStatsSweepNotifiesSinks(t *testing.T) {
	reg := registry.New()
	counters := stats.New()
	counters.IncTasksAdded()

	sink := &recordingSink{}
	cfg := Config{
		HeartbeatInterval: time.Hour,
		LivenessWindow:    time.Hour,
		StatsInterval:     5 * time.Millisecond,
	}
	r := New(cfg, reg, counters, zerolog.Nop(), sink)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	r.Run(ctx)

	assert.GreaterOrEqual(t, sink.count(), 1)
}

func TestLogSinkDoesNotPanic(t *testing.T) {
	sink := NewLogSink(zerolog.Nop())
	assert.NotPanics(t, func() {
		sink.Observe(stats.Snapshot{TasksAdded: 1, TasksAssigned: 2, TasksCompleted: 3})
	})
}
