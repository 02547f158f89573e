/*
Package queue implements the broker's durable priority task queue: a
container/heap-ordered store of pending tasks, persisted to disk on every
successful enqueue.

Ordering is (−priority, seq): higher priority first, then a monotonic,
queue-local sequence number assigned at enqueue time breaks ties between
tasks sharing a priority. The tie-break uses seq rather than enqueued_at,
so ordering stays a total order regardless of clock resolution.

Persistence uses write-then-rename (a temp file in the same directory,
fsynced, then renamed over the destination) so a crash mid-write never
leaves a torn file. Enqueue failure rolls back the in-memory insertion, so
a failed enqueue never leaves a task in memory that is missing from disk.
Dequeue does not write the file; a dequeued task leaves the snapshot at
the next successful Enqueue.
*/
package queue
