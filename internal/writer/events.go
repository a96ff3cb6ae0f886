package writer

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

// EventWriter records event-log lines into event_log. It implements
// eventlog.Sink.
type EventWriter struct {
	*batcher[eventRow]
}

// NewEventWriter creates a new EventWriter.
func NewEventWriter(cfg WriterConfig, db DB, logger *slog.Logger) *EventWriter {
	return &EventWriter{
		batcher: newBatcher(cfg, "event_log", db, logger, queueEvent),
	}
}

// RecordEvent queues one event-log line. It never blocks.
func (w *EventWriter) RecordEvent(at time.Time, msg string) {
	w.push(eventRow{LoggedAt: at.UnixMicro(), Message: msg})
}

func queueEvent(b *pgx.Batch, r eventRow) {
	b.Queue(`
		INSERT INTO event_log (logged_at, message)
		VALUES ($1, $2)
		ON CONFLICT (logged_at, message) DO NOTHING
	`, r.LoggedAt, r.Message)
}
