package blotter

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/rickgao/algo-trader/internal/metrics"
	"github.com/rickgao/algo-trader/internal/model"
)

// ErrNotSubscribed is returned when cancelling an order on a symbol with no
// working orders.
var ErrNotSubscribed = errors.New("no active subscription")

// StateError reports an operation that is invalid for the current blotter state.
type StateError struct {
	Op      string
	OrderID string
	Symbol  model.Symbol
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s order %s: %s: %v", e.Op, e.OrderID, e.Symbol, ErrNotSubscribed)
}

func (e *StateError) Unwrap() error {
	return ErrNotSubscribed
}

// Subscriber receives market-data subscription changes.
type Subscriber interface {
	Subscribe(symbol model.Symbol)
	Unsubscribe(symbol model.Symbol)
}

// Blotter holds working orders keyed by order ID. It is safe for concurrent use.
type Blotter struct {
	sub    Subscriber
	logger *slog.Logger

	// subsMu is held across the Subscribe/Unsubscribe call so that requests
	// for one symbol are queued in transition order.
	subsMu sync.Mutex
	subs   map[model.Symbol]int

	ordersMu sync.RWMutex
	orders   map[string]model.Order
}

// New creates an empty blotter that drives sub.
func New(sub Subscriber, logger *slog.Logger) *Blotter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Blotter{
		sub:    sub,
		logger: logger.With("component", "blotter"),
		subs:   make(map[model.Symbol]int),
		orders: make(map[string]model.Order),
	}
}

// Submit adds a working order, subscribing to its symbol if it is the first.
// An order with a known ID replaces the previous entry.
func (b *Blotter) Submit(order model.Order) {
	b.subsMu.Lock()
	count := b.subs[order.Symbol]
	if count == 0 {
		b.sub.Subscribe(order.Symbol)
		b.logger.Debug("subscribed", "symbol", order.Symbol)
	}
	b.subs[order.Symbol] = count + 1
	metrics.ActiveSubscriptions.Set(float64(len(b.subs)))
	b.subsMu.Unlock()

	b.ordersMu.Lock()
	b.orders[order.ID] = order
	metrics.WorkingOrders.Set(float64(len(b.orders)))
	b.ordersMu.Unlock()
}

// Cancel removes a working order, unsubscribing from its symbol if it was the
// last. If the symbol has no working orders Cancel returns a *StateError and
// changes nothing.
func (b *Blotter) Cancel(order model.Order) error {
	b.subsMu.Lock()
	count, ok := b.subs[order.Symbol]
	if !ok {
		b.subsMu.Unlock()
		return &StateError{Op: "cancel", OrderID: order.ID, Symbol: order.Symbol}
	}
	if count <= 1 {
		delete(b.subs, order.Symbol)
		b.sub.Unsubscribe(order.Symbol)
		b.logger.Debug("unsubscribed", "symbol", order.Symbol)
	} else {
		b.subs[order.Symbol] = count - 1
	}
	metrics.ActiveSubscriptions.Set(float64(len(b.subs)))
	b.subsMu.Unlock()

	b.ordersMu.Lock()
	delete(b.orders, order.ID)
	metrics.WorkingOrders.Set(float64(len(b.orders)))
	b.ordersMu.Unlock()

	return nil
}

// Order returns the working order with the given ID.
func (b *Blotter) Order(id string) (model.Order, bool) {
	b.ordersMu.RLock()
	defer b.ordersMu.RUnlock()
	o, ok := b.orders[id]
	return o, ok
}

// Orders returns all working orders sorted by ID.
func (b *Blotter) Orders() []model.Order {
	b.ordersMu.RLock()
	out := make([]model.Order, 0, len(b.orders))
	for _, o := range b.orders {
		out = append(out, o)
	}
	b.ordersMu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RefCount returns the number of working orders counted against symbol.
func (b *Blotter) RefCount(symbol model.Symbol) int {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()
	return b.subs[symbol]
}

// Subscriptions returns a copy of the per-symbol reference counts.
func (b *Blotter) Subscriptions() map[model.Symbol]int {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()

	out := make(map[model.Symbol]int, len(b.subs))
	for s, n := range b.subs {
		out[s] = n
	}
	return out
}
