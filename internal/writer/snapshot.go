package writer

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/algo-trader/internal/model"
)

// SnapshotWriter records applied order-book snapshots into book_snapshots.
type SnapshotWriter struct {
	*batcher[snapshotRow]
	now func() time.Time
}

// NewSnapshotWriter creates a new SnapshotWriter.
func NewSnapshotWriter(cfg WriterConfig, db DB, logger *slog.Logger) *SnapshotWriter {
	return &SnapshotWriter{
		batcher: newBatcher(cfg, "book_snapshots", db, logger, queueSnapshot),
		now:     time.Now,
	}
}

// RecordSnapshot queues snap for writing. It never blocks.
func (w *SnapshotWriter) RecordSnapshot(snap model.Snapshot) {
	w.push(w.transform(snap))
}

// transform converts a book snapshot to a snapshotRow.
func (w *SnapshotWriter) transform(snap model.Snapshot) snapshotRow {
	at := snap.ReceivedAt
	if at.IsZero() {
		at = w.now()
	}

	bid, hasBid := snap.BestBid()
	offer, hasOffer := snap.BestOffer()
	spread, _ := snap.Spread()

	return snapshotRow{
		SnapshotTs: at.UnixMicro(),
		Symbol:     snap.Symbol,
		Bids:       levelsToJSONB(snap.Bids),
		Offers:     levelsToJSONB(snap.Offers),
		BestBid:    bestPrice(bid, hasBid),
		BestOffer:  bestPrice(offer, hasOffer),
		Spread:     spread,
	}
}

func queueSnapshot(b *pgx.Batch, r snapshotRow) {
	b.Queue(`
		INSERT INTO book_snapshots (snapshot_ts, symbol, bids, offers, best_bid, best_offer, spread)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, snapshot_ts) DO NOTHING
	`, r.SnapshotTs, r.Symbol, r.Bids, r.Offers, r.BestBid, r.BestOffer, r.Spread)
}
