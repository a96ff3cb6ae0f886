package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/algo-trader/internal/buffer"
	"github.com/rickgao/algo-trader/internal/metrics"
)

// Engine runs the connection loop for one peer.
type Engine struct {
	cfg     Config
	dialer  Dialer
	handler Handler
	logger  *slog.Logger

	// Commands waiting to be written, including those queued while disconnected.
	outbox *buffer.Queue[string]

	state atomic.Int32

	// Owned by the Run goroutine.
	unknown int
}

// New creates an engine. handler may be nil, in which case every command other
// than the built-in ones is unknown.
func New(cfg Config, dialer Dialer, handler Handler, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Keepalive <= 0 {
		cfg.Keepalive = DefaultKeepalive
	}
	if cfg.MaxUnknown <= 0 {
		cfg.MaxUnknown = DefaultMaxUnknown
	}
	if cfg.OutboxSize <= 0 {
		cfg.OutboxSize = DefaultOutboxSize
	}

	e := &Engine{
		cfg:     cfg,
		dialer:  dialer,
		handler: handler,
		logger:  logger.With("session", cfg.Name),
		outbox:  buffer.NewQueue[string](cfg.OutboxSize),
	}
	e.setState(StateDisconnected)
	return e
}

// Send queues a line for the peer. It never blocks; lines queued while
// disconnected are written first on the next connection, in order.
func (e *Engine) Send(line string) {
	if !e.outbox.Push(line) {
		e.logger.Debug("outbox closed, dropping line", "line", line)
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Pending returns the number of lines waiting in the outbox.
func (e *Engine) Pending() int {
	return e.outbox.Len()
}

// Addr returns the peer address.
func (e *Engine) Addr() string {
	return e.dialer.Addr()
}

// Run connects and serves the session until ctx is cancelled, reconnecting
// after every failure. It returns ctx.Err().
func (e *Engine) Run(ctx context.Context) error {
	attempt := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		active, err := e.serve(ctx)
		e.setState(StateDisconnected)

		if ctx.Err() != nil {
			return ctx.Err()
		}

		var connErr *ConnectionError
		switch {
		case errors.As(err, &connErr):
			metrics.SessionFaults.WithLabelValues(e.cfg.Name, connErr.Op).Inc()
			e.logger.Warn("session aborted", "op", connErr.Op, "addr", connErr.Addr, "error", connErr.Err)
		case err != nil:
			e.logger.Warn("session closed", "error", err)
		default:
			e.logger.Info("session closed")
		}

		if active {
			attempt = 0
		}
		wait := e.cfg.Backoff.Delay(attempt)
		attempt++

		if wait > 0 {
			e.logger.Debug("reconnecting", "wait", wait, "attempt", attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}
}

// serve runs one connection. active reports whether it got past the initial flush.
func (e *Engine) serve(ctx context.Context) (active bool, err error) {
	e.setState(StateConnecting)
	e.unknown = 0

	sessionID := uuid.NewString()
	logger := e.logger.With("session_id", sessionID)

	conn, err := e.dialer.Dial(ctx)
	if err != nil {
		metrics.SessionConnects.WithLabelValues(e.cfg.Name, "error").Inc()
		return false, &ConnectionError{Op: "dial", Addr: e.dialer.Addr(), Err: err}
	}
	defer conn.Close()

	metrics.SessionConnects.WithLabelValues(e.cfg.Name, "ok").Inc()
	logger.Info("session connected", "addr", e.dialer.Addr(), "remote", conn.RemoteAddr())

	// lines is closed after the last line read; readErr is set before that.
	lines := make(chan string, 64)
	var readErr error
	done := make(chan struct{})
	defer close(done)

	go readLoop(conn, lines, &readErr, done)

	if err := e.flush(conn); err != nil {
		return false, err
	}
	e.setState(StateIdle)

	timer := time.NewTimer(e.cfg.Keepalive)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			e.setState(StateClosing)
			if err := e.write(conn, CmdBye); err != nil {
				logger.Debug("bye not delivered", "error", err)
			}
			return true, nil

		case line, ok := <-lines:
			if !ok {
				return true, &ConnectionError{Op: "read", Addr: e.dialer.Addr(), Err: readErr}
			}
			e.setState(StateActive)
			timer.Reset(e.cfg.Keepalive)

			closed, err := e.dispatch(conn, logger, line)
			if closed || err != nil {
				return true, err
			}
			if len(lines) == 0 {
				e.setState(StateIdle)
			}

		case <-e.outbox.Ready():
			if err := e.flush(conn); err != nil {
				return true, err
			}

		case <-timer.C:
			if err := e.write(conn, CmdPing); err != nil {
				return true, err
			}
			timer.Reset(e.cfg.Keepalive)
		}
	}
}

// dispatch handles one inbound line. closed is true when the session is over.
func (e *Engine) dispatch(conn Conn, logger *slog.Logger, line string) (closed bool, err error) {
	fields := strings.Split(line, ",")
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case CmdEnd:
		e.countIn(cmd)
		e.unknown = 0
		logger.Info("peer requested end of session")
		e.setState(StateClosing)
		return true, e.write(conn, CmdBye)

	case CmdBye:
		e.countIn(cmd)
		logger.Info("peer terminated session")
		e.setState(StateClosing)
		return true, nil

	case CmdPing, CmdConnected:
		e.countIn(cmd)
		e.unknown = 0
		return false, nil
	}

	if e.handler != nil && e.handler.HandleLine(cmd, args) {
		e.countIn(cmd)
		e.unknown = 0
		return false, nil
	}

	e.countIn("unknown")
	e.unknown++
	metrics.UnknownCommands.WithLabelValues(e.cfg.Name).Inc()
	logger.Debug("unknown command", "line", line, "count", e.unknown)

	if e.unknown >= e.cfg.MaxUnknown {
		e.setState(StateClosing)
		if err := e.write(conn, CmdEnd); err != nil {
			return true, err
		}
		return true, ErrTooManyUnknown
	}
	return false, e.write(conn, ReplyUnknown)
}

// flush writes every queued line in order. On failure the unsent lines,
// including the one that failed, go back to the head of the outbox.
func (e *Engine) flush(conn Conn) error {
	pending := e.outbox.Drain(0)
	for i, line := range pending {
		if err := e.write(conn, line); err != nil {
			e.outbox.Requeue(pending[i:])
			return err
		}
	}
	return nil
}

func (e *Engine) write(conn Conn, line string) error {
	if err := conn.WriteLine(line); err != nil {
		return &ConnectionError{Op: "write", Addr: e.dialer.Addr(), Err: err}
	}
	cmd, _, _ := strings.Cut(line, ",")
	metrics.SessionLines.WithLabelValues(e.cfg.Name, "out", cmd).Inc()
	return nil
}

func (e *Engine) countIn(cmd string) {
	metrics.SessionLines.WithLabelValues(e.cfg.Name, "in", cmd).Inc()
}

func (e *Engine) setState(s State) {
	e.state.Store(int32(s))
	metrics.SessionState.WithLabelValues(e.cfg.Name).Set(float64(s))
}

func readLoop(conn Conn, lines chan<- string, errp *error, done <-chan struct{}) {
	defer close(lines)
	for {
		line, err := conn.ReadLine()
		if err != nil {
			*errp = err
			return
		}
		select {
		case lines <- line:
		case <-done:
			return
		}
	}
}
