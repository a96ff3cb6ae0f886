// Package writer implements the batch writers of the market-data recorder.
//
// Writers:
//   - Snapshot writer: every applied order-book snapshot (book_snapshots)
//   - Event writer: every event-log line (event_log)
//
// All writers use append-only semantics (never update, only insert).
// Timestamps are stored as Unix microseconds.
package writer
