package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"mock-status-feed/internal/fakedata"
	"mock-status-feed/internal/metrics"
	"mock-status-feed/internal/mirror"
)

const (
	DefaultInterval = 10 * time.Second

	writeDeadline     = 5 * time.Second
	mirrorTimeout     = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Server is the mock broadcaster. The zero value is not usable; construct
// with NewServer.
type Server struct {
	addr         string
	interval     time.Duration
	clock        clockwork.Clock
	newGenerator func() *fakedata.Generator
	mirror       mirror.Mirror
	logger       *slog.Logger
	upgrader     websocket.Upgrader

	echoMu sync.Mutex
	echo   io.Writer

	active atomic.Int64

	// mu guards closing and orders wg.Add against the final wg.Wait.
	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

type Option func(*Server)

// WithInterval sets the delay between two snapshots on one connection.
func WithInterval(d time.Duration) Option {
	return func(s *Server) { s.interval = d }
}

func WithClock(c clockwork.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// WithGenerators sets the factory called once per accepted connection.
func WithGenerators(f func() *fakedata.Generator) Option {
	return func(s *Server) { s.newGenerator = f }
}

// WithEcho sets where sent payloads are echoed. nil disables the echo.
func WithEcho(w io.Writer) Option {
	return func(s *Server) { s.echo = w }
}

func WithMirror(m mirror.Mirror) Option {
	return func(s *Server) { s.mirror = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func NewServer(addr string, opts ...Option) *Server {
	s := &Server{
		addr:         addr,
		interval:     DefaultInterval,
		clock:        clockwork.NewRealClock(),
		newGenerator: fakedata.NewRandom,
		mirror:       &mirror.NoOpMirror{},
		logger:       slog.Default(),
		echo:         os.Stdout,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connections returns the number of currently open feed connections.
func (s *Server) Connections() int64 {
	return s.active.Load()
}

// Listen binds the configured address. Failures are returned as *BindError.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, &BindError{Addr: s.addr, Err: err}
	}
	return ln, nil
}

// Start binds and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts WebSocket connections on ln until ctx is cancelled, then
// closes the listener and waits for every connection loop to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("mock status feed listening", "addr", ln.Addr().String(), "interval", s.interval)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	// Hijacked connections are not tracked by Shutdown.
	s.wg.Wait()
	s.logger.Info("mock status feed stopped")
	return err
}

// ServeHTTP upgrades any request to a WebSocket and runs the broadcast loop
// for it until the peer leaves or the request context ends.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		metrics.UpgradeFailures.Inc()
		s.logger.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	s.active.Add(1)
	metrics.ConnectionsCurrent.Inc()
	metrics.ConnectionsTotal.Inc()
	defer func() {
		s.active.Add(-1)
		metrics.ConnectionsCurrent.Dec()
		_ = conn.Close()
	}()

	remote := conn.RemoteAddr().String()
	s.logger.Info("client connected", "remote", remote, "connections", s.active.Load())
	s.run(r.Context(), conn, s.newGenerator())
	s.logger.Info("client disconnected", "remote", remote)
}

func (s *Server) run(parent context.Context, conn *websocket.Conn, gen *fakedata.Generator) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	go drain(conn, cancel)

	for {
		payload, err := json.Marshal(gen.Snapshot())
		if err != nil {
			s.logger.Error("failed to encode snapshot", "error", err)
			return
		}

		if err := s.send(conn, payload); err != nil {
			metrics.SendFailures.Inc()
			s.logger.Debug("stopping broadcast loop", "error", err)
			return
		}
		metrics.SnapshotsSent.Inc()
		metrics.SnapshotBytes.Observe(float64(len(payload)))

		// The interval runs from the send, so a slow mirror does not stretch it.
		timer := s.clock.NewTimer(s.interval)
		s.echoPayload(payload)
		s.mirrorPayload(ctx, payload)

		select {
		case <-ctx.Done():
			timer.Stop()
			if parent.Err() != nil {
				goingAway(conn)
			}
			return
		case <-timer.Chan():
		}
	}
}

func (s *Server) send(conn *websocket.Conn, payload []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return &ConnectionClosedError{Remote: conn.RemoteAddr().String(), Err: err}
	}
	return nil
}

func (s *Server) echoPayload(payload []byte) {
	if s.echo == nil {
		return
	}
	s.echoMu.Lock()
	defer s.echoMu.Unlock()
	fmt.Fprintf(s.echo, "> %s\n", payload)
}

func (s *Server) mirrorPayload(ctx context.Context, payload []byte) {
	mctx, cancel := context.WithTimeout(ctx, mirrorTimeout)
	defer cancel()
	if err := s.mirror.Publish(mctx, payload); err != nil {
		metrics.MirrorErrors.Inc()
		s.logger.Warn("failed to mirror snapshot", "error", err)
	}
}

// drain consumes inbound frames so control frames are processed and a peer
// close is noticed. Data frames are discarded unread.
func drain(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func goingAway(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeDeadline))
}
