// Package database provides the PostgreSQL / TimescaleDB connection pool used
// by the market-data recorder.
//
// Tables:
//   - book_snapshots: every applied order-book snapshot (ladders as JSONB)
//   - event_log: every line written to the event log
//
// Both tables are append-only. They are never read back by the trader.
package database
