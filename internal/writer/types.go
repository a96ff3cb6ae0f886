package writer

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/algo-trader/internal/config"
)

// DB sends a batch of statements. *pgxpool.Pool satisfies it.
type DB interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// WriterConfig contains configuration for batch writers.
type WriterConfig struct {
	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration

	// BufferSize is the initial capacity of the input queue.
	BufferSize int
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     config.DefaultBatchSize,
		FlushInterval: config.DefaultFlushInterval,
		BufferSize:    config.DefaultBufferSize,
	}
}

// FromConfig converts the recorder section of the trader config.
func FromConfig(cfg config.RecorderConfig) WriterConfig {
	return WriterConfig{
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		BufferSize:    cfg.BufferSize,
	}
}

// WriterMetrics tracks writer performance.
type WriterMetrics struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Dropped   int64 // Rows offered after Stop
	Flushes   int64
}

// snapshotRow represents a row for the book_snapshots table.
type snapshotRow struct {
	SnapshotTs int64 // Microseconds
	Symbol     string
	Bids       []byte // JSONB
	Offers     []byte // JSONB
	BestBid    float64
	BestOffer  float64
	Spread     float64 // 0 unless both sides are populated
}

// eventRow represents a row for the event_log table.
type eventRow struct {
	LoggedAt int64 // Microseconds
	Message  string
}
