package model

import "time"

// Symbol identifies a tradable instrument.
type Symbol = string

// PriceLevel is a single price point on one side of a book.
type PriceLevel struct {
	Price    float64
	Quantity float64
}

// Snapshot is a full replacement view of one symbol's ladders.
type Snapshot struct {
	Symbol     Symbol
	Bids       []PriceLevel // Descending by price
	Offers     []PriceLevel // Ascending by price
	ReceivedAt time.Time
}

// BestBid returns the first bid level, if any.
func (s Snapshot) BestBid() (PriceLevel, bool) {
	if len(s.Bids) == 0 {
		return PriceLevel{}, false
	}
	return s.Bids[0], true
}

// BestOffer returns the first offer level, if any.
func (s Snapshot) BestOffer() (PriceLevel, bool) {
	if len(s.Offers) == 0 {
		return PriceLevel{}, false
	}
	return s.Offers[0], true
}

// Spread returns best offer minus best bid. ok is false unless both sides are populated.
func (s Snapshot) Spread() (spread float64, ok bool) {
	bid, okBid := s.BestBid()
	offer, okOffer := s.BestOffer()
	if !okBid || !okOffer {
		return 0, false
	}
	return offer.Price - bid.Price, true
}

// Order is a working order accepted by the order-routing venue.
type Order struct {
	ID     string // Caller-guaranteed unique
	Symbol Symbol
}
