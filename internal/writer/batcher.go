package writer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/algo-trader/internal/buffer"
	"github.com/rickgao/algo-trader/internal/metrics"
)

// batcher accumulates rows from its input queue and inserts them in batches.
// Concrete writers supply the table name and the statement for one row.
type batcher[R any] struct {
	cfg    WriterConfig
	table  string
	logger *slog.Logger
	db     DB
	queue  func(b *pgx.Batch, row R)

	// Input from the recording side
	input *buffer.Queue[R]

	// Batching
	batch       []R
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	stats WriterMetrics
}

func newBatcher[R any](cfg WriterConfig, table string, db DB, logger *slog.Logger, queue func(*pgx.Batch, R)) *batcher[R] {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultWriterConfig().BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultWriterConfig().FlushInterval
	}
	return &batcher[R]{
		cfg:    cfg,
		table:  table,
		logger: logger.With("table", table),
		db:     db,
		queue:  queue,
		input:  buffer.NewQueue[R](cfg.BufferSize),
		batch:  make([]R, 0, cfg.BatchSize),
	}
}

// Start begins consuming rows and writing to the database.
func (w *batcher[R]) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	// Consumer goroutine
	w.wg.Add(1)
	go w.consumeLoop()

	// Flush ticker goroutine
	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop stops accepting rows, waits for the goroutines and flushes what is left.
// ctx bounds both the wait and the final flush.
func (w *batcher[R]) Stop(ctx context.Context) error {
	w.logger.Info("stopping writer")

	w.input.Close()
	if w.cancel != nil {
		w.cancel()
	}
	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	// Wait for goroutines
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("writer stopped")
	case <-ctx.Done():
		w.logger.Warn("writer stop timed out")
	}

	// Final flush of anything still queued
	w.add(w.input.Drain(0))
	for w.flush(ctx) {
	}

	return nil
}

// Stats returns current metrics.
func (w *batcher[R]) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.stats
}

// push offers a row to the writer. It never blocks.
func (w *batcher[R]) push(row R) {
	if !w.input.Push(row) {
		w.batchMu.Lock()
		w.stats.Dropped++
		w.batchMu.Unlock()
	}
}

// consumeLoop moves rows from the input queue into the batch.
func (w *batcher[R]) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.input.Ready():
			if w.add(w.input.Drain(w.cfg.BatchSize)) {
				w.flush(w.ctx)
			}
		}
	}
}

// flushLoop periodically flushes the batch.
func (w *batcher[R]) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush(w.ctx)
		}
	}
}

// add appends rows to the batch and reports whether it is full.
func (w *batcher[R]) add(rows []R) bool {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	w.batch = append(w.batch, rows...)
	return len(w.batch) >= w.cfg.BatchSize
}

// flush writes at most one batch and reports whether more rows are waiting.
func (w *batcher[R]) flush(ctx context.Context) bool {
	w.batchMu.Lock()
	n := len(w.batch)
	if n > w.cfg.BatchSize {
		n = w.cfg.BatchSize
	}
	rows := w.batch[:n:n]
	rest := make([]R, 0, w.cfg.BatchSize)
	rest = append(rest, w.batch[n:]...)
	w.batch = rest
	more := len(w.batch) > 0
	w.batchMu.Unlock()

	if len(rows) == 0 {
		return false
	}

	start := time.Now()

	if w.db == nil {
		w.logger.Warn("no database, discarding batch", "count", len(rows))
		metrics.RecorderRows.WithLabelValues(w.table, "error").Add(float64(len(rows)))
		w.batchMu.Lock()
		w.stats.Errors++
		w.batchMu.Unlock()
		return more
	}

	conflicts, err := w.insert(ctx, rows)
	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(rows))
		metrics.RecorderRows.WithLabelValues(w.table, "error").Add(float64(len(rows)))
		w.batchMu.Lock()
		w.stats.Errors++
		w.batchMu.Unlock()
		return more
	}

	metrics.RecorderRows.WithLabelValues(w.table, "ok").Add(float64(len(rows) - conflicts))
	metrics.RecorderRows.WithLabelValues(w.table, "conflict").Add(float64(conflicts))

	w.batchMu.Lock()
	w.stats.Inserts += int64(len(rows) - conflicts)
	w.stats.Conflicts += int64(conflicts)
	w.stats.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed batch",
		"rows", len(rows),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
	return more
}

// insert sends rows in one pgx.Batch and counts rows skipped by ON CONFLICT.
func (w *batcher[R]) insert(ctx context.Context, rows []R) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		w.queue(batch, r)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
