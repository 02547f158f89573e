package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QueueSize tracks the number of pending tasks held in memory.
	QueueSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskbroker_queue_size",
			Help: "Number of pending tasks currently in the queue",
		},
	)

	WorkersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskbroker_workers_total",
			Help: "Number of workers currently registered",
		},
	)

	ConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskbroker_connections_active",
			Help: "Number of open client connections",
		},
	)

	TasksAddedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taskbroker_tasks_added_total",
			Help: "Total number of tasks successfully added to the queue",
		},
	)

	TasksAssignedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taskbroker_tasks_assigned_total",
			Help: "Total number of tasks successfully assigned to a worker",
		},
	)

	TasksCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taskbroker_tasks_completed_total",
			Help: "Total number of tasks reported complete",
		},
	)

	TasksExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taskbroker_tasks_expired_total",
			Help: "Total number of tasks discarded at dequeue for exceeding their timeout",
		},
	)

	WorkersEvictedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taskbroker_workers_evicted_total",
			Help: "Total number of workers evicted for a stale heartbeat",
		},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskbroker_requests_total",
			Help: "Total number of requests handled by verb and status",
		},
		[]string{"verb", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskbroker_request_duration_seconds",
			Help:    "Per-request handling duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"verb"},
	)
)

func init() {
	prometheus.MustRegister(
		QueueSize,
		WorkersTotal,
		ConnectionsActive,
		TasksAddedTotal,
		TasksAssignedTotal,
		TasksCompletedTotal,
		TasksExpiredTotal,
		WorkersEvictedTotal,
		RequestsTotal,
		RequestDuration,
	)
}

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
