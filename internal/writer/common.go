package writer

import (
	"encoding/json"

	"github.com/rickgao/algo-trader/internal/model"
)

// priceLevelJSON represents a price level in JSONB format.
type priceLevelJSON struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"qty"`
}

// levelsToJSONB converts a ladder to JSONB bytes. An empty ladder is "[]".
func levelsToJSONB(levels []model.PriceLevel) []byte {
	result := make([]priceLevelJSON, len(levels))
	for i, level := range levels {
		result[i] = priceLevelJSON{Price: level.Price, Quantity: level.Quantity}
	}
	data, _ := json.Marshal(result)
	return data
}

// bestPrice returns the price of the first level, or 0.
func bestPrice(level model.PriceLevel, ok bool) float64 {
	if !ok {
		return 0
	}
	return level.Price
}
