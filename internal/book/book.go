package book

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rickgao/algo-trader/internal/model"
)

// Side markers inside a SNAPSHOT message.
const (
	SideBid   = "BID"
	SideOffer = "OFFER"
)

// Parse failures.
var (
	ErrNoSide        = errors.New("price level before side marker")
	ErrInvalidNumber = errors.New("invalid number")
	ErrMissingSymbol = errors.New("missing symbol")
)

// ParseError reports a malformed SNAPSHOT. The update it belongs to is dropped.
type ParseError struct {
	Symbol string
	Token  string
	Pos    int // Index of the offending field after the symbol, -1 for end of message
	Err    error
}

func (e *ParseError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("snapshot %s: %v at end of message", e.Symbol, e.Err)
	}
	return fmt.Sprintf("snapshot %s: field %d %q: %v", e.Symbol, e.Pos, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type ladders struct {
	bids       []model.PriceLevel
	offers     []model.PriceLevel
	receivedAt time.Time
}

// Book is the set of ladders for every symbol seen so far. It is safe for
// concurrent use: one writer (the market-data session) and any number of readers.
type Book struct {
	mu      sync.RWMutex
	symbols map[model.Symbol]*ladders
	now     func() time.Time
}

// New creates an empty book.
func New() *Book {
	return &Book{
		symbols: make(map[model.Symbol]*ladders),
		now:     time.Now,
	}
}

// Update parses the fields following the symbol of a SNAPSHOT message and
// replaces the symbol's ladders. On error the previous ladders are untouched.
//
// A pending price is kept across side markers and pairs with the next numeric
// token, whichever ladder is active then. A trailing price is ignored.
func (b *Book) Update(symbol model.Symbol, fields []string) error {
	if symbol == "" {
		return &ParseError{Pos: -1, Err: ErrMissingSymbol}
	}

	var bids, offers []model.PriceLevel
	var target *[]model.PriceLevel

	var pending float64
	hasPending := false

	for i, tok := range fields {
		switch tok {
		case SideBid, SideOffer:
			if tok == SideBid {
				target = &bids
			} else {
				target = &offers
			}
			continue
		}

		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return &ParseError{Symbol: symbol, Token: tok, Pos: i, Err: ErrInvalidNumber}
		}
		if target == nil {
			return &ParseError{Symbol: symbol, Token: tok, Pos: i, Err: ErrNoSide}
		}

		if !hasPending {
			pending, hasPending = v, true
			continue
		}
		*target = append(*target, model.PriceLevel{Price: pending, Quantity: v})
		hasPending = false
	}

	sort.SliceStable(bids, func(i, j int) bool { return bids[i].Price > bids[j].Price })
	sort.SliceStable(offers, func(i, j int) bool { return offers[i].Price < offers[j].Price })

	next := &ladders{bids: bids, offers: offers, receivedAt: b.now()}

	b.mu.Lock()
	b.symbols[symbol] = next
	b.mu.Unlock()

	return nil
}

// Bids returns a copy of the symbol's bid ladder, best first.
func (b *Book) Bids(symbol model.Symbol) []model.PriceLevel {
	b.mu.RLock()
	defer b.mu.RUnlock()

	l, ok := b.symbols[symbol]
	if !ok {
		return nil
	}
	return clone(l.bids)
}

// Offers returns a copy of the symbol's offer ladder, best first.
func (b *Book) Offers(symbol model.Symbol) []model.PriceLevel {
	b.mu.RLock()
	defer b.mu.RUnlock()

	l, ok := b.symbols[symbol]
	if !ok {
		return nil
	}
	return clone(l.offers)
}

// Snapshot returns a consistent copy of both ladders for symbol.
func (b *Book) Snapshot(symbol model.Symbol) (model.Snapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	l, ok := b.symbols[symbol]
	if !ok {
		return model.Snapshot{}, false
	}
	return model.Snapshot{
		Symbol:     symbol,
		Bids:       clone(l.bids),
		Offers:     clone(l.offers),
		ReceivedAt: l.receivedAt,
	}, true
}

// Top returns the best bid and best offer for symbol. Missing sides are reported
// through hasBid / hasOffer.
func (b *Book) Top(symbol model.Symbol) (bid, offer model.PriceLevel, hasBid, hasOffer bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	l, ok := b.symbols[symbol]
	if !ok {
		return
	}
	if len(l.bids) > 0 {
		bid, hasBid = l.bids[0], true
	}
	if len(l.offers) > 0 {
		offer, hasOffer = l.offers[0], true
	}
	return
}

// Symbols returns every symbol with a book, sorted.
func (b *Book) Symbols() []model.Symbol {
	b.mu.RLock()
	out := make([]model.Symbol, 0, len(b.symbols))
	for s := range b.symbols {
		out = append(out, s)
	}
	b.mu.RUnlock()

	sort.Strings(out)
	return out
}

func clone(levels []model.PriceLevel) []model.PriceLevel {
	if levels == nil {
		return []model.PriceLevel{}
	}
	out := make([]model.PriceLevel, len(levels))
	copy(out, levels)
	return out
}
