package broker

import (
	"errors"
	"io"
	"net"

	"github.com/cuemby/taskbroker/pkg/wire"
)

// connState carries the one piece of state a connection accumulates
// over its lifetime: the worker id it registered under, set on its
// first successful get_task. Every other request is handled statelessly
// against pkg/queue and pkg/registry.
type connState struct {
	conn       net.Conn
	addr       string
	workerID   string
	registered bool
}

// handleConn runs the per-connection state machine: read a frame,
// decrypt and verify it, dispatch the verified message, write back a
// reply, repeat. It exits on a clean EOF, a decryption failure, a write
// failure, or any other transport error, and always deregisters the
// connection's worker (if any) and closes the socket on the way out.
func (s *Server) handleConn(conn net.Conn) {
	st := &connState{conn: conn, addr: conn.RemoteAddr().String()}
	log := s.log.With().Str("remote_addr", st.addr).Str("conn_id", connID()).Logger()

	defer func() {
		if st.registered {
			s.registry.Deregister(st.workerID)
		}
		_ = conn.Close()
	}()

	for {
		frame, err := wire.ReadFrame(conn, s.frameCap)
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Debug().Msg("connection closed by peer")
			} else {
				log.Debug().Err(err).Msg("transport error reading frame")
			}
			return
		}

		env, err := s.codec.Decode(frame)
		if err != nil {
			switch {
			case errors.Is(err, wire.ErrDecryption):
				log.Warn().Err(err).Msg("decryption failure, closing connection")
				s.tryReply(conn, wire.ErrorReply("decryption failed"))
				return
			case errors.Is(err, wire.ErrFormat):
				log.Debug().Err(err).Msg("malformed message")
				if !s.tryReply(conn, wire.ErrorReply("malformed message")) {
					return
				}
				continue
			case errors.Is(err, wire.ErrAuth):
				log.Warn().Msg("authentication tag mismatch")
				if !s.tryReply(conn, wire.ErrorReply("authentication failed")) {
					return
				}
				continue
			default:
				log.Debug().Err(err).Msg("unexpected decode error")
				return
			}
		}

		reply := s.dispatch(env, st)
		if !s.tryReply(conn, reply) {
			return
		}
	}
}

// tryReply encodes and writes reply, returning false if the connection
// should be abandoned (a write or encode failure is always treated as a
// transport error, matching the handler's exit conditions).
func (s *Server) tryReply(conn net.Conn, reply wire.Envelope) bool {
	ciphertext, err := s.codec.Encode(reply)
	if err != nil {
		return false
	}
	if err := wire.WriteFrame(conn, ciphertext, s.frameCap); err != nil {
		return false
	}
	return true
}

// dispatch turns a verified Envelope into a typed request and runs it
// against pkg/queue and pkg/registry, returning the reply Envelope to
// send back. Protocol errors (an unknown verb or a missing required
// field) produce a structured error reply; the connection is never
// closed for them.
func (s *Server) dispatch(env wire.Envelope, st *connState) wire.Envelope {
	req, err := wire.ParseRequest(env)
	if err != nil {
		return wire.ErrorReply(err.Error())
	}

	switch r := req.(type) {
	case *wire.AddTaskRequest:
		return s.handleAddTask(r)
	case *wire.GetTaskRequest:
		return s.handleGetTask(r, st)
	case *wire.TaskCompletedRequest:
		return s.handleTaskCompleted(r, st)
	case *wire.HeartbeatRequest:
		return s.handleHeartbeat(r, st)
	default:
		return wire.ErrorReply("unknown type")
	}
}

func (s *Server) handleAddTask(r *wire.AddTaskRequest) wire.Envelope {
	taskID, err := s.queue.Enqueue(r.Priority, r.Task, float64(r.Timeout))
	if err != nil {
		return wire.ErrorReply(err.Error())
	}
	s.counters.IncTasksAdded()
	return wire.OKReply(map[string]interface{}{"task_id": taskID})
}

func (s *Server) handleGetTask(r *wire.GetTaskRequest, st *connState) wire.Envelope {
	if !st.registered {
		s.registry.Register(r.WorkerID, st.addr, st.conn)
		st.workerID = r.WorkerID
		st.registered = true
	}

	task := s.queue.Dequeue()
	if task == nil {
		return wire.EmptyReply()
	}

	s.registry.BumpInflight(st.workerID)
	s.counters.IncTasksAssigned()
	return wire.OKReply(map[string]interface{}{
		"task_id": task.ID,
		"task":    task.Payload["task"],
	})
}

func (s *Server) handleTaskCompleted(r *wire.TaskCompletedRequest, st *connState) wire.Envelope {
	if !st.registered {
		return wire.ErrorReply("invalid task completion")
	}

	s.log.Debug().Str("task_id", r.TaskID).Interface("result", r.Result).Msg("task completed")
	s.registry.DropInflight(st.workerID)
	s.counters.IncTasksCompleted()
	return wire.OKReply(nil)
}

func (s *Server) handleHeartbeat(r *wire.HeartbeatRequest, st *connState) wire.Envelope {
	if st.registered {
		s.registry.Touch(st.workerID)
	}
	return wire.OKReply(nil)
}
