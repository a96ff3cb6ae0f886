package writer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/algo-trader/internal/model"
)

// fakeDB records queued statements. Rows whose first argument is in conflict
// report zero rows affected.
type fakeDB struct {
	mu       sync.Mutex
	args     [][]any
	batches  int
	conflict map[any]bool
	err      error
}

func (f *fakeDB) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches++

	res := &fakeResults{err: f.err}
	for _, q := range b.QueuedQueries {
		f.args = append(f.args, q.Arguments)
		res.affected = append(res.affected, !f.conflict[q.Arguments[0]])
	}
	return res
}

func (f *fakeDB) Rows() [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]any(nil), f.args...)
}

type fakeResults struct {
	affected []bool
	err      error
}

func (r *fakeResults) Exec() (pgconn.CommandTag, error) {
	if r.err != nil {
		return pgconn.CommandTag{}, r.err
	}
	ok := r.affected[0]
	r.affected = r.affected[1:]
	if ok {
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return pgconn.NewCommandTag("INSERT 0 0"), nil
}

func (r *fakeResults) Query() (pgx.Rows, error) { return nil, errors.New("not supported") }
func (r *fakeResults) QueryRow() pgx.Row        { return nil }
func (r *fakeResults) Close() error             { return nil }

func TestSnapshotWriter_Transform(t *testing.T) {
	w := NewSnapshotWriter(DefaultWriterConfig(), nil, nil)

	receivedAt := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	row := w.transform(model.Snapshot{
		Symbol:     "XYZ",
		Bids:       []model.PriceLevel{{Price: 10.0, Quantity: 5}, {Price: 9.5, Quantity: 3}},
		Offers:     []model.PriceLevel{{Price: 10.5, Quantity: 2}},
		ReceivedAt: receivedAt,
	})

	if row.SnapshotTs != receivedAt.UnixMicro() {
		t.Errorf("SnapshotTs = %d, want %d", row.SnapshotTs, receivedAt.UnixMicro())
	}
	if row.Symbol != "XYZ" {
		t.Errorf("Symbol = %s, want XYZ", row.Symbol)
	}
	if row.BestBid != 10.0 || row.BestOffer != 10.5 {
		t.Errorf("best = %v / %v, want 10 / 10.5", row.BestBid, row.BestOffer)
	}
	if row.Spread != 0.5 {
		t.Errorf("Spread = %v, want 0.5", row.Spread)
	}

	var bids []priceLevelJSON
	if err := json.Unmarshal(row.Bids, &bids); err != nil {
		t.Fatalf("bids JSON: %v", err)
	}
	if len(bids) != 2 || bids[1].Price != 9.5 || bids[1].Quantity != 3 {
		t.Errorf("bids = %+v", bids)
	}
}

func TestSnapshotWriter_Transform_OneSided(t *testing.T) {
	w := NewSnapshotWriter(DefaultWriterConfig(), nil, nil)
	fixed := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	row := w.transform(model.Snapshot{
		Symbol: "XYZ",
		Bids:   []model.PriceLevel{{Price: 10.0, Quantity: 5}},
	})

	if string(row.Offers) != "[]" {
		t.Errorf("Offers = %s, want []", row.Offers)
	}
	if row.BestOffer != 0 || row.Spread != 0 {
		t.Errorf("BestOffer = %v, Spread = %v; want 0, 0", row.BestOffer, row.Spread)
	}
	if row.SnapshotTs != fixed.UnixMicro() {
		t.Errorf("SnapshotTs = %d, want clock fallback %d", row.SnapshotTs, fixed.UnixMicro())
	}
}

func TestSnapshotWriter_Lifecycle(t *testing.T) {
	cfg := WriterConfig{
		BatchSize:     10,
		FlushInterval: 100 * time.Millisecond,
	}

	// No database; this tests the goroutine lifecycle
	w := NewSnapshotWriter(cfg, nil, nil)

	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := w.Stop(stopCtx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestSnapshotWriter_FlushOnStop(t *testing.T) {
	db := &fakeDB{}
	cfg := WriterConfig{BatchSize: 100, FlushInterval: time.Hour}
	w := NewSnapshotWriter(cfg, db, nil)

	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	at := time.Now()
	w.RecordSnapshot(model.Snapshot{Symbol: "XYZ", ReceivedAt: at})
	w.RecordSnapshot(model.Snapshot{Symbol: "ABC", ReceivedAt: at})

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Stop(stopCtx); err != nil {
		t.Fatal(err)
	}

	rows := db.Rows()
	if len(rows) != 2 {
		t.Fatalf("inserted %d rows, want 2", len(rows))
	}
	if rows[0][1] != "XYZ" || rows[1][1] != "ABC" {
		t.Errorf("row symbols = %v, %v", rows[0][1], rows[1][1])
	}
	if stats := w.Stats(); stats.Inserts != 2 || stats.Flushes == 0 {
		t.Errorf("Stats() = %+v", stats)
	}

	// Rows offered after Stop are dropped.
	w.RecordSnapshot(model.Snapshot{Symbol: "LATE"})
	if stats := w.Stats(); stats.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", stats.Dropped)
	}
}

func TestSnapshotWriter_FlushOnBatchSize(t *testing.T) {
	db := &fakeDB{}
	cfg := WriterConfig{BatchSize: 2, FlushInterval: time.Hour}
	w := NewSnapshotWriter(cfg, db, nil)

	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop(context.Background())

	for _, s := range []string{"A", "B", "C", "D"} {
		w.RecordSnapshot(model.Snapshot{Symbol: s, ReceivedAt: time.Now()})
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(db.Rows()) < 4 {
		if time.Now().After(deadline) {
			t.Fatalf("inserted %d rows before the flush interval, want 4", len(db.Rows()))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEventWriter_Conflicts(t *testing.T) {
	at := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	db := &fakeDB{conflict: map[any]bool{at.UnixMicro(): true}}
	w := NewEventWriter(WriterConfig{BatchSize: 10, FlushInterval: time.Hour}, db, nil)

	w.RecordEvent(at, "AlgoTrader is up.")
	w.RecordEvent(at.Add(time.Millisecond), "Received termination signal.")

	if err := w.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}

	stats := w.Stats()
	if stats.Inserts != 1 || stats.Conflicts != 1 {
		t.Errorf("Stats() = %+v, want 1 insert and 1 conflict", stats)
	}
	rows := db.Rows()
	if len(rows) != 2 || rows[0][1] != "AlgoTrader is up." {
		t.Errorf("rows = %v", rows)
	}
}

func TestEventWriter_InsertError(t *testing.T) {
	db := &fakeDB{err: errors.New("connection reset")}
	w := NewEventWriter(WriterConfig{BatchSize: 10, FlushInterval: time.Hour}, db, nil)

	w.RecordEvent(time.Now(), "hello")
	if err := w.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}

	if stats := w.Stats(); stats.Errors != 1 || stats.Inserts != 0 {
		t.Errorf("Stats() = %+v, want 1 error", stats)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := DefaultWriterConfig()
	if cfg.BatchSize <= 0 || cfg.FlushInterval <= 0 || cfg.BufferSize <= 0 {
		t.Errorf("DefaultWriterConfig() = %+v", cfg)
	}
}
