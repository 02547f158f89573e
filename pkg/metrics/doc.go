/*
Package metrics provides Prometheus metrics, health endpoints, and a
timing helper for the broker.

Gauges (QueueSize, WorkersTotal, ConnectionsActive) and counters
(TasksAddedTotal, TasksAssignedTotal, TasksCompletedTotal,
TasksExpiredTotal, WorkersEvictedTotal, RequestsTotal,
RequestDuration) are registered at init and served via Handler at
/metrics. Collector keeps QueueSize and WorkersTotal current and mirrors
pkg/stats' atomic counters into TasksAddedTotal, TasksAssignedTotal and
TasksCompletedTotal; ConnectionsActive, TasksExpiredTotal,
WorkersEvictedTotal, RequestsTotal and RequestDuration are registered
but nothing in the broker updates them. pkg/reaper's stats
sweep drives it on the same ticker that produces the informational log
line, so both stay in sync between scrapes.

HealthHandler, ReadyHandler, and LivenessHandler serve /health, /ready,
and /live respectively, backed by a small component registry
(RegisterComponent/UpdateComponent) that cmd/taskbroker updates once the
broker's listener is bound.
*/
package metrics
