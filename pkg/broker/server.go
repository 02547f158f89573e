package broker

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cuemby/taskbroker/pkg/queue"
	"github.com/cuemby/taskbroker/pkg/reaper"
	"github.com/cuemby/taskbroker/pkg/registry"
	"github.com/cuemby/taskbroker/pkg/stats"
	"github.com/cuemby/taskbroker/pkg/wire"
)

// Server is the broker's TCP front end: it accepts connections, frames
// and authenticates every message through pkg/wire, and dispatches
// requests against a shared pkg/queue and pkg/registry. Its lifecycle
// is NewServer / Start(addr) / Shutdown(ctx): Start binds the listener
// and begins accepting in the background, Shutdown closes it and waits
// for in-flight connections to finish.
type Server struct {
	codec    *wire.Codec
	queue    *queue.PriorityQueue
	registry *registry.Registry
	counters *stats.Counters
	reaper   *reaper.Reaper
	frameCap uint32
	log      zerolog.Logger

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup

	reaperCancel context.CancelFunc
}

// Config gathers everything Server needs beyond the address it listens
// on.
type Config struct {
	Codec    *wire.Codec
	Queue    *queue.PriorityQueue
	Registry *registry.Registry
	Counters *stats.Counters
	Reaper   *reaper.Reaper
	FrameCap uint32
	Logger   zerolog.Logger
}

// NewServer builds a Server from cfg. FrameCap defaults to
// wire.DefaultFrameCap when zero.
func NewServer(cfg Config) *Server {
	cap := cfg.FrameCap
	if cap == 0 {
		cap = wire.DefaultFrameCap
	}
	return &Server{
		codec:    cfg.Codec,
		queue:    cfg.Queue,
		registry: cfg.Registry,
		counters: cfg.Counters,
		reaper:   cfg.Reaper,
		frameCap: cap,
		log:      cfg.Logger,
	}
}

// Start binds addr and begins accepting connections, each served by its
// own goroutine. It also starts the reaper's two background sweeps,
// cancelled together with the listener on Shutdown. Start returns once
// the listener is bound; Accept runs in the background.
func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = lis
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.reaperCancel = cancel
	if s.reaper != nil {
		go s.reaper.Run(ctx)
	}

	s.log.Info().Str("address", addr).Msg("broker listening")

	go s.acceptLoop(lis)
	return nil
}

// ListenerAddr returns the address Start bound to, useful when addr was
// "host:0" and the OS chose the port.
func (s *Server) ListenerAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener.Addr().String()
}

func (s *Server) acceptLoop(lis net.Listener) {
	for {
		conn, err := lis.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Error().Err(err).Msg("accept failed")
			return
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Shutdown stops accepting new connections and cancels the reaper, then
// waits up to the context's deadline for in-flight handlers to finish.
// Connections still open when ctx expires are left to close on their
// own; Shutdown never forcibly severs a connection.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	lis := s.listener
	s.mu.Unlock()

	if lis != nil {
		_ = lis.Close()
	}
	if s.reaperCancel != nil {
		s.reaperCancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info().Msg("broker shut down cleanly")
		return nil
	case <-ctx.Done():
		s.log.Warn().Msg("broker shutdown grace period expired with connections still open")
		return ctx.Err()
	}
}

// connID generates a short random identifier for per-connection logging,
// since the wire protocol has no concept of a connection handle until a
// worker registers with get_task.
func connID() string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
