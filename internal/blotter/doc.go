// Package blotter tracks working orders and the market-data subscriptions
// they need.
//
// Each symbol carries a reference count of working orders. The first order on
// a symbol subscribes to its market data and the last cancel unsubscribes, so
// the subscriber sees exactly one Subscribe and one Unsubscribe per period of
// interest.
package blotter
