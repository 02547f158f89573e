/*
Package registry tracks connected workers: their address, in-flight task
count, and liveness, all guarded by a single lock.

A worker is created by Register on a connection's first get_task and
removed by Deregister when the connection closes, or by EvictStale's
heartbeat sweep when it has gone silent past the configured liveness
window. SelectLeastLoaded picks the worker with the fewest in-flight
tasks, breaking ties by registration order; it's kept ready for a future
push-assignment mode even though the current pull-model dispatcher does
not call it.
*/
package registry
