// Package marketdata is the price-subscription session. It forwards SUB and
// UNSUB requests to the market-data source and applies the SNAPSHOT messages
// it receives to the order book.
package marketdata
