package client

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/cuemby/taskbroker/pkg/security"
	"github.com/cuemby/taskbroker/pkg/wire"
)

// Client wraps a single TCP connection to the broker, encoding and
// decoding every request/reply pair through pkg/wire. One physical
// connection only ever has one request in flight, so Client serializes
// calls behind a mutex rather than pooling connections.
type Client struct {
	mu    sync.Mutex
	conn  net.Conn
	codec *wire.Codec
}

// NewClient dials addr and builds a Client authenticated with secret,
// the same shared secret the broker was started with.
func NewClient(addr string, secret []byte) (*Client, error) {
	cipher, err := security.NewCipher(secret)
	if err != nil {
		return nil, fmt.Errorf("building cipher: %w", err)
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("dialing broker: %w", err)
	}

	return &Client{conn: conn, codec: wire.NewCodec(cipher)}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// call sends req and returns the decoded reply, holding the connection
// lock for the full round trip.
func (c *Client) call(req wire.Envelope) (wire.Envelope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ciphertext, err := c.codec.Encode(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	if err := wire.WriteFrame(c.conn, ciphertext, wire.DefaultFrameCap); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}

	frame, err := wire.ReadFrame(c.conn, wire.DefaultFrameCap)
	if err != nil {
		return nil, fmt.Errorf("reading reply: %w", err)
	}
	reply, err := c.codec.Decode(frame)
	if err != nil {
		return nil, fmt.Errorf("decoding reply: %w", err)
	}
	return reply, nil
}

// AddTask submits a new task, returning its assigned task_id.
func (c *Client) AddTask(task string, priority, timeoutS int64) (string, error) {
	reply, err := c.call(wire.Envelope{
		"type":     wire.VerbAddTask,
		"task":     task,
		"priority": priority,
		"timeout":  timeoutS,
	})
	if err != nil {
		return "", err
	}
	if reply["status"] != wire.StatusOK {
		return "", fmt.Errorf("add_task failed: %v", reply["message"])
	}
	taskID, _ := reply["task_id"].(string)
	return taskID, nil
}

// Task is the payload handed back by GetTask.
type Task struct {
	ID      string
	Payload string
}

// GetTask requests the next task for workerID. ok is false when the
// queue has nothing pending.
func (c *Client) GetTask(workerID string) (task *Task, ok bool, err error) {
	reply, err := c.call(wire.Envelope{"type": wire.VerbGetTask, "worker_id": workerID})
	if err != nil {
		return nil, false, err
	}

	switch reply["status"] {
	case wire.StatusEmpty:
		return nil, false, nil
	case wire.StatusOK:
		id, _ := reply["task_id"].(string)
		payload, _ := reply["task"].(string)
		return &Task{ID: id, Payload: payload}, true, nil
	default:
		return nil, false, fmt.Errorf("get_task failed: %v", reply["message"])
	}
}

// TaskCompleted reports taskID done for workerID, with an optional
// result value accepted by the wire protocol but not persisted server
// side.
func (c *Client) TaskCompleted(taskID, workerID string, result interface{}) error {
	reply, err := c.call(wire.Envelope{
		"type":      wire.VerbTaskCompleted,
		"task_id":   taskID,
		"worker_id": workerID,
		"result":    result,
	})
	if err != nil {
		return err
	}
	if reply["status"] != wire.StatusOK {
		return fmt.Errorf("task_completed failed: %v", reply["message"])
	}
	return nil
}

// Heartbeat refreshes workerID's liveness on the broker.
func (c *Client) Heartbeat(workerID string) error {
	reply, err := c.call(wire.Envelope{"type": wire.VerbHeartbeat, "worker_id": workerID})
	if err != nil {
		return err
	}
	if reply["status"] != wire.StatusOK {
		return fmt.Errorf("heartbeat failed: %v", reply["message"])
	}
	return nil
}
