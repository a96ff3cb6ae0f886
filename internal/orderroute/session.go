package orderroute

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rickgao/algo-trader/internal/model"
	"github.com/rickgao/algo-trader/internal/session"
)

// Order-routing commands.
const (
	CmdNew      = "NEW"
	CmdCancel   = "CANCEL"
	CmdAccepted = "ACCEPTED"
	CmdCanceled = "CANCELED"
	CmdReject   = "REJECT"
)

// Blotter records working orders.
type Blotter interface {
	Submit(order model.Order)
	Cancel(order model.Order) error
}

// EventLog records operator-visible events.
type EventLog interface {
	Write(msg string) error
}

// Session is the order-routing session.
type Session struct {
	engine  *session.Engine
	blotter Blotter
	events  EventLog
	logger  *slog.Logger
}

// New creates an order-routing session that feeds blotter.
func New(cfg session.Config, dialer session.Dialer, blotter Blotter, events EventLog, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Name == "" {
		cfg.Name = "orderroute"
	}

	s := &Session{
		blotter: blotter,
		events:  events,
		logger:  logger.With("component", "orderroute"),
	}
	s.engine = session.New(cfg, dialer, s, logger)
	return s
}

// NewOrder sends an order to the venue. It enters the blotter once the venue
// accepts it.
func (s *Session) NewOrder(order model.Order) {
	s.engine.Send(session.Format(CmdNew, order.ID, order.Symbol))
}

// CancelOrder asks the venue to cancel an order.
func (s *Session) CancelOrder(order model.Order) {
	s.engine.Send(session.Format(CmdCancel, order.ID, order.Symbol))
}

// Run serves the session until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	s.writeEvent("Connecting to order routing on " + s.engine.Addr())
	return s.engine.Run(ctx)
}

// State returns the connection state.
func (s *Session) State() session.State {
	return s.engine.State()
}

// HandleLine implements session.Handler. ACCEPTED and CANCELED lines without
// both an order ID and a symbol are treated as unknown.
func (s *Session) HandleLine(cmd string, args []string) bool {
	switch cmd {
	case CmdAccepted:
		order, ok := parseOrder(args)
		if !ok {
			return false
		}
		s.blotter.Submit(order)
		s.logger.Debug("order accepted", "order_id", order.ID, "symbol", order.Symbol)
		return true

	case CmdCanceled:
		order, ok := parseOrder(args)
		if !ok {
			return false
		}
		if err := s.blotter.Cancel(order); err != nil {
			s.logger.Warn("cancel rejected by blotter", "order_id", order.ID, "error", err)
			s.writeEvent("OR CANCEL FAILED:" + err.Error())
			return true
		}
		s.logger.Debug("order canceled", "order_id", order.ID, "symbol", order.Symbol)
		return true

	case CmdReject:
		s.writeEvent("OR REJECT:" + session.Format(cmd, args...))
		return true

	default:
		return false
	}
}

func parseOrder(args []string) (model.Order, bool) {
	if len(args) < 2 {
		return model.Order{}, false
	}
	id, symbol := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
	if id == "" || symbol == "" {
		return model.Order{}, false
	}
	return model.Order{ID: id, Symbol: symbol}, true
}

func (s *Session) writeEvent(msg string) {
	if s.events == nil {
		return
	}
	if err := s.events.Write(msg); err != nil {
		s.logger.Error("event log write failed", "error", err)
	}
}
