package writer

import (
	"encoding/json"
	"testing"

	"github.com/rickgao/algo-trader/internal/model"
)

func TestLevelsToJSONB(t *testing.T) {
	levels := []model.PriceLevel{
		{Price: 10.0, Quantity: 5},
		{Price: 9.75, Quantity: 0.5},
	}

	data := levelsToJSONB(levels)

	var result []priceLevelJSON
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("len = %d, want 2", len(result))
	}
	if result[0].Price != 10.0 || result[0].Quantity != 5 {
		t.Errorf("result[0] = %+v", result[0])
	}
	if result[1].Price != 9.75 || result[1].Quantity != 0.5 {
		t.Errorf("result[1] = %+v", result[1])
	}
}

func TestLevelsToJSONB_Empty(t *testing.T) {
	for _, levels := range [][]model.PriceLevel{nil, {}} {
		if got := string(levelsToJSONB(levels)); got != "[]" {
			t.Errorf("levelsToJSONB(%v) = %s, want []", levels, got)
		}
	}
}

func TestBestPrice(t *testing.T) {
	tests := []struct {
		name  string
		level model.PriceLevel
		ok    bool
		want  float64
	}{
		{"present", model.PriceLevel{Price: 10.5, Quantity: 1}, true, 10.5},
		{"missing side", model.PriceLevel{}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bestPrice(tt.level, tt.ok); got != tt.want {
				t.Errorf("bestPrice() = %v, want %v", got, tt.want)
			}
		})
	}
}
