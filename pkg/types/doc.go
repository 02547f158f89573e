/*
Package types defines the core data structures shared across the broker,
its workers, and its clients.

# Core Types

Task:
  - ID, Priority, Payload, TimeoutS, EnqueuedAt identify and describe a
    unit of work.
  - Seq is assigned by pkg/queue at enqueue time and breaks ties between
    tasks sharing a priority, in FIFO submission order.

Worker:
  - ID, Address, Inflight, LastHeartbeat, State, RegisteredAt describe a
    registered task consumer as tracked by pkg/registry.

# Thread Safety

Values of these types are not safe for concurrent mutation; callers
(pkg/queue, pkg/registry) own synchronization.
*/
package types
