package reaper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/taskbroker/pkg/registry"
	"github.com/cuemby/taskbroker/pkg/stats"
)

// StatsSink receives a counters snapshot once per stats sweep. Multiple
// sinks can be active at once; LogSink and MetricsSink are the two
// wired into the broker (cmd/taskbroker), keeping the informational log
// line and the /metrics gauges fed from the same tick.
type StatsSink interface {
	Observe(stats.Snapshot)
}

// Config holds the reaper's two sweep intervals and the registry's
// liveness window.
type Config struct {
	HeartbeatInterval time.Duration
	LivenessWindow    time.Duration
	StatsInterval     time.Duration
}

// Reaper runs the broker's two background sweeps for as long as its
// context stays live: heartbeat eviction against the worker registry,
// and periodic stats emission. Each iteration's body is wrapped in a
// recover() so a single panic is logged and swallowed rather than
// killing the sweep.
type Reaper struct {
	cfg      Config
	registry *registry.Registry
	counters *stats.Counters
	sinks    []StatsSink
	log      zerolog.Logger
}

// New builds a Reaper. sinks are invoked, in order, once per stats
// sweep tick.
func New(cfg Config, reg *registry.Registry, counters *stats.Counters, logger zerolog.Logger, sinks ...StatsSink) *Reaper {
	return &Reaper{cfg: cfg, registry: reg, counters: counters, sinks: sinks, log: logger}
}

// Run blocks, driving both sweeps until ctx is cancelled. Call it in its
// own goroutine.
func (r *Reaper) Run(ctx context.Context) {
	go r.runHeartbeatSweep(ctx)
	r.runStatsSweep(ctx)
}

func (r *Reaper) runHeartbeatSweep(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.safeSweepHeartbeats()
		}
	}
}

func (r *Reaper) runStatsSweep(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.safeSweepStats()
		}
	}
}

func (r *Reaper) safeSweepHeartbeats() {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Msg("heartbeat sweep panicked, continuing")
		}
	}()

	evicted := r.registry.EvictStale(time.Now(), r.cfg.LivenessWindow)
	for _, id := range evicted {
		r.log.Info().Str("worker_id", id).Msg("evicted worker for stale heartbeat")
	}
}

func (r *Reaper) safeSweepStats() {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Msg("stats sweep panicked, continuing")
		}
	}()

	snap := r.counters.Snapshot()
	for _, sink := range r.sinks {
		sink.Observe(snap)
	}
}
