package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cuemby/taskbroker/pkg/types"
)

// ErrPersistence wraps any load or save I/O failure.
var ErrPersistence = fmt.Errorf("persistence error")

// record is the on-disk shape of a pending task, matching the schema
// authoritative over §4.2's abstract field names: priority, task_id,
// task (the opaque payload string), timestamp (enqueued_at, Unix
// seconds), timeout (timeout_s).
type record struct {
	Priority  int64   `json:"priority"`
	TaskID    string  `json:"task_id"`
	Task      string  `json:"task"`
	Timestamp float64 `json:"timestamp"`
	Timeout   float64 `json:"timeout"`
}

func taskToRecord(t *types.Task) record {
	payload, _ := t.Payload["task"].(string)
	return record{
		Priority:  t.Priority,
		TaskID:    t.ID,
		Task:      payload,
		Timestamp: float64(t.EnqueuedAt.UnixNano()) / 1e9,
		Timeout:   t.TimeoutS,
	}
}

func recordToTask(r record, seq int64) *types.Task {
	sec := int64(r.Timestamp)
	nsec := int64((r.Timestamp - float64(sec)) * 1e9)
	return &types.Task{
		ID:         r.TaskID,
		Priority:   r.Priority,
		Payload:    map[string]interface{}{"task": r.Task},
		TimeoutS:   r.Timeout,
		EnqueuedAt: time.Unix(sec, nsec),
		Seq:        seq,
	}
}

// save writes tasks to path using write-then-rename: the full contents
// are written to a temporary file in the same directory, fsynced, then
// renamed over the destination. This avoids a torn file if the process
// dies mid-write.
func save(path string, tasks []*types.Task) error {
	records := make([]record, len(tasks))
	for i, t := range tasks {
		records[i] = taskToRecord(t)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: marshaling records: %v", ErrPersistence, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", ErrPersistence, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: writing temp file: %v", ErrPersistence, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: syncing temp file: %v", ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing temp file: %v", ErrPersistence, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: renaming into place: %v", ErrPersistence, err)
	}
	return nil
}

// load reads path, reconstructing each Task with its original
// enqueued_at preserved and a freshly assigned seq. The on-disk array
// order is the heap's internal layout at the time of the last save, not
// insertion order, once any Dequeue has happened: heap.Pop's sift-down
// permutes sibling positions. Records are sorted by their preserved
// timestamp before seq assignment so FIFO-within-priority survives a
// save/load round trip regardless of heap layout. A missing file is
// equivalent to an empty queue. Any record that fails to parse aborts
// the load.
func load(path string, nextSeq func() int64) ([]*types.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrPersistence, path, err)
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrPersistence, path, err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})

	tasks := make([]*types.Task, len(records))
	for i, r := range records {
		tasks[i] = recordToTask(r, nextSeq())
	}
	return tasks, nil
}
