package reaper

import (
	"github.com/rs/zerolog"

	"github.com/cuemby/taskbroker/pkg/metrics"
	"github.com/cuemby/taskbroker/pkg/stats"
)

// LogSink emits one structured log line per stats sweep, mirroring the
// original print_stats behavior.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink builds a LogSink writing through logger.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{log: logger}
}

// Observe logs the snapshot at info level.
func (s *LogSink) Observe(snap stats.Snapshot) {
	s.log.Info().
		Int64("tasks_added", snap.TasksAdded).
		Int64("tasks_assigned", snap.TasksAssigned).
		Int64("tasks_completed", snap.TasksCompleted).
		Msg("stats")
}

// MetricsSink mirrors a snapshot into the queue/worker gauges and the
// cumulative Prometheus counters, keeping /metrics current between
// scrapes.
type MetricsSink struct {
	collector *metrics.Collector
}

// NewMetricsSink builds a MetricsSink over collector.
func NewMetricsSink(collector *metrics.Collector) *MetricsSink {
	return &MetricsSink{collector: collector}
}

// Observe triggers a Collector.Collect pass. The snapshot itself is
// re-read from the shared Counters inside Collect so both stay
// consistent with a single lock-free read.
func (s *MetricsSink) Observe(stats.Snapshot) {
	s.collector.Collect()
}
