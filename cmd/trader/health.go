package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rickgao/algo-trader/internal/metrics"
	"github.com/rickgao/algo-trader/internal/model"
	"github.com/rickgao/algo-trader/internal/session"
	"github.com/rickgao/algo-trader/internal/version"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type stater interface {
	State() session.State
}

type bookReader interface {
	Symbols() []model.Symbol
	Snapshot(symbol model.Symbol) (model.Snapshot, bool)
}

type blotterReader interface {
	Orders() []model.Order
	Subscriptions() map[model.Symbol]int
}

// healthDeps are the components inspected by the health handler. db may be nil.
type healthDeps struct {
	db         pinger
	book       bookReader
	blotter    blotterReader
	marketData stater
	orderRoute stater
}

// createHealthHandler creates the HTTP handler for health checks, debug views
// and metrics.
func createHealthHandler(deps healthDeps, metricsPath string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string                 `json:"status"`
			Version    version.Info           `json:"version"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Version:    version.Get(),
			Components: make(map[string]interface{}),
		}

		// Sessions are degraded while reconnecting
		for name, s := range map[string]stater{"marketdata": deps.marketData, "orderroute": deps.orderRoute} {
			state := s.State()
			health.Components[name] = state.String()
			if state != session.StateActive && state != session.StateIdle {
				health.Status = "degraded"
			}
		}

		// Check recorder database
		if deps.db != nil {
			if err := deps.db.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["recorder"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["recorder"] = "connected"
			}
		}

		// Set response
		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/book", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if symbol := r.URL.Query().Get("symbol"); symbol != "" {
			snap, ok := deps.book.Snapshot(symbol)
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]string{"error": "no book for " + symbol})
				return
			}
			json.NewEncoder(w).Encode(snap)
			return
		}

		type top struct {
			Symbol    string            `json:"symbol"`
			BestBid   *model.PriceLevel `json:"best_bid,omitempty"`
			BestOffer *model.PriceLevel `json:"best_offer,omitempty"`
			Depth     [2]int            `json:"depth"`
		}
		symbols := deps.book.Symbols()
		tops := make([]top, 0, len(symbols))
		for _, s := range symbols {
			snap, ok := deps.book.Snapshot(s)
			if !ok {
				continue
			}
			t := top{Symbol: s, Depth: [2]int{len(snap.Bids), len(snap.Offers)}}
			if bid, ok := snap.BestBid(); ok {
				t.BestBid = &bid
			}
			if offer, ok := snap.BestOffer(); ok {
				t.BestOffer = &offer
			}
			tops = append(tops, t)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"count":   len(tops),
			"symbols": tops,
		})
	})

	mux.HandleFunc("/debug/blotter", func(w http.ResponseWriter, r *http.Request) {
		orders := deps.blotter.Orders()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count":         len(orders),
			"orders":        orders,
			"subscriptions": deps.blotter.Subscriptions(),
		})
	})

	mux.Handle(metricsPath, metrics.Handler())

	return mux
}
