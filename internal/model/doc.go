// Package model defines shared data types used across the trader.
//
// Conventions:
//   - Symbols are opaque strings issued by the market-data source
//   - Prices and quantities are float64, exactly as they appear on the wire
//   - Bid ladders are ordered best (highest) first, offer ladders best (lowest) first
package model
