package db

import (
	"context"
	"database/sql"
	"fmt"
)

// MigrateUp creates the bill_rows table and its indexes if they do not exist.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS bill_rows (
    id               BIGSERIAL PRIMARY KEY,
    run_id           UUID NOT NULL,
    position         INTEGER NOT NULL,
    senator          TEXT NOT NULL,
    district         INTEGER NOT NULL,
    party            TEXT NOT NULL,
    bills_link       TEXT NOT NULL,
    description      TEXT NOT NULL,
    chamber          TEXT NOT NULL,
    last_action      TEXT NOT NULL,
    last_action_date TEXT NOT NULL,
    created_at       TIMESTAMPTZ DEFAULT now()
)`); err != nil {
		return fmt.Errorf("create bill_rows: %w", err)
	}

	indexes := []string{
		// rows of one run, in output order
		`CREATE INDEX IF NOT EXISTS idx_bill_rows_run_position ON bill_rows(run_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_bill_rows_district ON bill_rows(district)`,
	}
	for _, q := range indexes {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}
