package repository

import (
	"context"

	"senate-bills/internal/domain/entity"
)

// BillRowRepository persists joined rows, grouped by crawl run.
type BillRowRepository interface {
	InsertRows(ctx context.Context, runID string, rows []entity.BillRow) error
	CountByRun(ctx context.Context, runID string) (int, error)
}
