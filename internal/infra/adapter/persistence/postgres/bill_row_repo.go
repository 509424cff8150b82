package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"senate-bills/internal/domain/entity"
	"senate-bills/internal/repository"
)

// BillRowRepo stores joined rows in the bill_rows table.
type BillRowRepo struct{ db *sql.DB }

// NewBillRowRepo returns a repository backed by db.
func NewBillRowRepo(db *sql.DB) repository.BillRowRepository {
	return &BillRowRepo{db: db}
}

// InsertRows stores rows for runID in one transaction. Positions continue from
// the rows already stored for the run, so repeated calls keep output order.
func (repo *BillRowRepo) InsertRows(ctx context.Context, runID string, rows []entity.BillRow) (err error) {
	if len(rows) == 0 {
		return nil
	}

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("InsertRows: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const nextPosition = `
SELECT COALESCE(MAX(position), -1) + 1
FROM bill_rows
WHERE run_id = $1`
	var base int
	if err = tx.QueryRowContext(ctx, nextPosition, runID).Scan(&base); err != nil {
		return fmt.Errorf("InsertRows: next position: %w", err)
	}

	const insert = `
INSERT INTO bill_rows
    (run_id, position, senator, district, party, bills_link,
     description, chamber, last_action, last_action_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("InsertRows: prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range rows {
		if _, err = stmt.ExecContext(ctx,
			runID, base+i,
			r.Senator.Name, r.Senator.District, r.Senator.Party, r.Senator.DetailURL,
			r.Bill.Description, r.Bill.Chamber, r.Bill.LastAction, r.Bill.LastActionDate,
		); err != nil {
			return fmt.Errorf("InsertRows: row %d: %w", base+i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("InsertRows: commit: %w", err)
	}
	return nil
}

// CountByRun returns how many rows are stored for runID.
func (repo *BillRowRepo) CountByRun(ctx context.Context, runID string) (int, error) {
	const query = `SELECT COUNT(*) FROM bill_rows WHERE run_id = $1`
	var n int
	if err := repo.db.QueryRowContext(ctx, query, runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("CountByRun: %w", err)
	}
	return n, nil
}
