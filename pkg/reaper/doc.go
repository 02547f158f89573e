/*
Package reaper runs the broker's two background sweeps for its entire
lifetime: a heartbeat sweep that evicts stale workers from pkg/registry,
and a stats sweep that hands a pkg/stats snapshot to every registered
StatsSink.

Both sweeps are cancellable periodic tasks driven by a shared
context.Context rather than ad-hoc sleeps; cancelling the context stops
both loops. Each iteration recovers from panics internally so one bad
iteration logs and continues instead of terminating the sweep.

LogSink and MetricsSink are the two StatsSink implementations wired into
the broker: one writes an informational stats log line, the other keeps
/metrics current between scrapes. Both run on the same tick.
*/
package reaper
