package model

import "testing"

func TestSnapshot_Best(t *testing.T) {
	s := Snapshot{
		Symbol: "XYZ",
		Bids:   []PriceLevel{{Price: 10.0, Quantity: 5}, {Price: 9.5, Quantity: 3}},
		Offers: []PriceLevel{{Price: 10.5, Quantity: 2}, {Price: 11.0, Quantity: 7}},
	}

	bid, ok := s.BestBid()
	if !ok || bid.Price != 10.0 || bid.Quantity != 5 {
		t.Errorf("BestBid() = %+v, %v, want {10 5}, true", bid, ok)
	}

	offer, ok := s.BestOffer()
	if !ok || offer.Price != 10.5 || offer.Quantity != 2 {
		t.Errorf("BestOffer() = %+v, %v, want {10.5 2}, true", offer, ok)
	}

	spread, ok := s.Spread()
	if !ok {
		t.Fatal("Spread() ok = false, want true")
	}
	if spread != 0.5 {
		t.Errorf("Spread() = %v, want 0.5", spread)
	}
}

func TestSnapshot_EmptySides(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
	}{
		{name: "empty", snap: Snapshot{Symbol: "XYZ"}},
		{name: "bids only", snap: Snapshot{Symbol: "XYZ", Bids: []PriceLevel{{Price: 1, Quantity: 1}}}},
		{name: "offers only", snap: Snapshot{Symbol: "XYZ", Offers: []PriceLevel{{Price: 1, Quantity: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := tt.snap.Spread(); ok {
				t.Error("Spread() ok = true, want false")
			}
		})
	}
}
