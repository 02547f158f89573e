package wire

import "fmt"

// Verb names recognized in the "type" field of a request Envelope.
const (
	VerbAddTask       = "add_task"
	VerbGetTask       = "get_task"
	VerbTaskCompleted = "task_completed"
	VerbHeartbeat     = "heartbeat"
)

const (
	defaultPriority = 0
	defaultTimeout  = 300
)

// AddTaskRequest submits a new task to the queue.
type AddTaskRequest struct {
	Task     string
	Priority int64
	Timeout  int64
}

// GetTaskRequest asks for the next available task, registering the
// connection as a worker on first use.
type GetTaskRequest struct {
	WorkerID string
}

// TaskCompletedRequest reports that a previously assigned task finished.
// Result is accepted and logged but never persisted (see pkg/broker).
type TaskCompletedRequest struct {
	TaskID   string
	WorkerID string
	Result   interface{}
}

// HeartbeatRequest refreshes a worker's liveness.
type HeartbeatRequest struct {
	WorkerID string
}

// ParseRequest turns a verified Envelope into one of the typed request
// structs above, dispatching on its "type" field. It rejects any verb
// missing or mistyping a required field with ErrProtocol, and any verb
// outside the recognized set with ErrUnknownVerb.
func ParseRequest(env Envelope) (interface{}, error) {
	verb, ok := env["type"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing type field", ErrProtocol)
	}

	switch verb {
	case VerbAddTask:
		return parseAddTask(env)
	case VerbGetTask:
		return parseGetTask(env)
	case VerbTaskCompleted:
		return parseTaskCompleted(env)
	case VerbHeartbeat:
		return parseHeartbeat(env)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVerb, verb)
	}
}

func parseAddTask(env Envelope) (*AddTaskRequest, error) {
	task, ok := env["task"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: add_task requires string \"task\"", ErrProtocol)
	}

	priority, err := optionalInt(env, "priority", defaultPriority)
	if err != nil {
		return nil, err
	}
	timeout, err := optionalInt(env, "timeout", defaultTimeout)
	if err != nil {
		return nil, err
	}

	return &AddTaskRequest{Task: task, Priority: priority, Timeout: timeout}, nil
}

func parseGetTask(env Envelope) (*GetTaskRequest, error) {
	workerID, ok := env["worker_id"].(string)
	if !ok || workerID == "" {
		return nil, fmt.Errorf("%w: get_task requires string \"worker_id\"", ErrProtocol)
	}
	return &GetTaskRequest{WorkerID: workerID}, nil
}

func parseTaskCompleted(env Envelope) (*TaskCompletedRequest, error) {
	taskID, ok := env["task_id"].(string)
	if !ok || taskID == "" {
		return nil, fmt.Errorf("%w: task_completed requires string \"task_id\"", ErrProtocol)
	}
	workerID, ok := env["worker_id"].(string)
	if !ok || workerID == "" {
		return nil, fmt.Errorf("%w: task_completed requires string \"worker_id\"", ErrProtocol)
	}

	return &TaskCompletedRequest{
		TaskID:   taskID,
		WorkerID: workerID,
		Result:   env["result"],
	}, nil
}

func parseHeartbeat(env Envelope) (*HeartbeatRequest, error) {
	workerID, ok := env["worker_id"].(string)
	if !ok || workerID == "" {
		return nil, fmt.Errorf("%w: heartbeat requires string \"worker_id\"", ErrProtocol)
	}
	return &HeartbeatRequest{WorkerID: workerID}, nil
}

// optionalInt reads a numeric field decoded by encoding/json (always
// float64 for a JSON number) and falls back to def when absent.
func optionalInt(env Envelope, key string, def int64) (int64, error) {
	v, present := env[key]
	if !present {
		return def, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: %q must be numeric", ErrProtocol, key)
	}
	return int64(f), nil
}
