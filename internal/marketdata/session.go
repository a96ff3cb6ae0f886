package marketdata

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rickgao/algo-trader/internal/metrics"
	"github.com/rickgao/algo-trader/internal/model"
	"github.com/rickgao/algo-trader/internal/session"
)

// Market-data commands.
const (
	CmdSubscribe   = "SUB"
	CmdUnsubscribe = "UNSUB"
	CmdSnapshot    = "SNAPSHOT"
	CmdReject      = "REJECT"
)

// OrderBook receives snapshot updates.
type OrderBook interface {
	Update(symbol model.Symbol, fields []string) error
	Snapshot(symbol model.Symbol) (model.Snapshot, bool)
}

// EventLog records operator-visible events.
type EventLog interface {
	Write(msg string) error
}

// Recorder receives every snapshot applied to the book.
type Recorder interface {
	RecordSnapshot(snap model.Snapshot)
}

// Option configures a Session.
type Option func(*Session)

// WithRecorder forwards applied snapshots to r.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// Session is the market-data session. Subscribe and Unsubscribe are safe to
// call from any goroutine at any time.
type Session struct {
	engine   *session.Engine
	book     OrderBook
	events   EventLog
	recorder Recorder
	logger   *slog.Logger
}

// New creates a market-data session that dials with dialer.
func New(cfg session.Config, dialer session.Dialer, book OrderBook, events EventLog, logger *slog.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Name == "" {
		cfg.Name = "marketdata"
	}

	s := &Session{
		book:   book,
		events: events,
		logger: logger.With("component", "marketdata"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = session.New(cfg, dialer, s, logger)
	return s
}

// Subscribe requests market data for symbol.
func (s *Session) Subscribe(symbol model.Symbol) {
	s.engine.Send(session.Format(CmdSubscribe, symbol))
}

// Unsubscribe cancels the market-data request for symbol.
func (s *Session) Unsubscribe(symbol model.Symbol) {
	s.engine.Send(session.Format(CmdUnsubscribe, symbol))
}

// Run serves the session until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	s.writeEvent("Connecting to price subscriptions on " + s.engine.Addr())
	return s.engine.Run(ctx)
}

// State returns the connection state.
func (s *Session) State() session.State {
	return s.engine.State()
}

// Pending returns the number of requests not yet written to the source.
func (s *Session) Pending() int {
	return s.engine.Pending()
}

// HandleLine implements session.Handler.
func (s *Session) HandleLine(cmd string, args []string) bool {
	switch cmd {
	case CmdSnapshot:
		s.applySnapshot(args)
		return true
	case CmdReject:
		s.writeEvent("MD REJECT:" + session.Format(cmd, args...))
		return true
	default:
		return false
	}
}

func (s *Session) applySnapshot(args []string) {
	var symbol model.Symbol
	var fields []string
	if len(args) > 0 {
		symbol, fields = strings.TrimSpace(args[0]), args[1:]
	}

	if err := s.book.Update(symbol, fields); err != nil {
		metrics.SnapshotUpdates.WithLabelValues("parse_error").Inc()
		s.logger.Warn("dropping malformed snapshot", "symbol", symbol, "error", err)
		return
	}
	metrics.SnapshotUpdates.WithLabelValues("ok").Inc()

	if s.recorder == nil {
		return
	}
	if snap, ok := s.book.Snapshot(symbol); ok {
		s.recorder.RecordSnapshot(snap)
	}
}

func (s *Session) writeEvent(msg string) {
	if s.events == nil {
		return
	}
	if err := s.events.Write(msg); err != nil {
		s.logger.Error("event log write failed", "error", err)
	}
}
