package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer runs a statement. *pgxpool.Pool satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Schema creates the recorder tables if they do not exist.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS book_snapshots (
		snapshot_ts BIGINT           NOT NULL,
		symbol      TEXT             NOT NULL,
		bids        JSONB            NOT NULL,
		offers      JSONB            NOT NULL,
		best_bid    DOUBLE PRECISION NOT NULL,
		best_offer  DOUBLE PRECISION NOT NULL,
		spread      DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (symbol, snapshot_ts)
	)`,
	`CREATE TABLE IF NOT EXISTS event_log (
		logged_at BIGINT NOT NULL,
		message   TEXT   NOT NULL,
		PRIMARY KEY (logged_at, message)
	)`,
}

// EnsureSchema applies Schema in order.
func EnsureSchema(ctx context.Context, db Execer) error {
	for _, stmt := range Schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
