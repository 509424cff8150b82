package crawl

import (
	"context"
	"errors"
	"fmt"

	"senate-bills/internal/domain/entity"
	"senate-bills/internal/observability/metrics"
	"senate-bills/internal/repository"
)

// RowSink receives joined rows. In end mode WriteRows is called once with every
// row; in incremental mode once with no rows after the listing is read, then
// once per senator, possibly with no rows.
// The caller that creates a sink closes it.
type RowSink interface {
	WriteRows(ctx context.Context, rows []entity.BillRow) error
	Close() error
}

// MultiSink writes to each sink in order and stops at the first error.
type MultiSink []RowSink

// WriteRows implements RowSink.
func (m MultiSink) WriteRows(ctx context.Context, rows []entity.BillRow) error {
	for _, s := range m {
		if err := s.WriteRows(ctx, rows); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RepositorySink stores rows through a BillRowRepository, tagged with RunID.
type RepositorySink struct {
	Repo  repository.BillRowRepository
	RunID string
}

// WriteRows implements RowSink. Empty batches are not sent.
func (s *RepositorySink) WriteRows(ctx context.Context, rows []entity.BillRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.Repo.InsertRows(ctx, s.RunID, rows); err != nil {
		return fmt.Errorf("store rows: %w", err)
	}
	metrics.RecordRowsWritten("postgres", len(rows))
	return nil
}

// Verify checks that the repository holds want rows for the run.
func (s *RepositorySink) Verify(ctx context.Context, want int) error {
	got, err := s.Repo.CountByRun(ctx, s.RunID)
	if err != nil {
		return fmt.Errorf("count stored rows: %w", err)
	}
	if got != want {
		return fmt.Errorf("run %s: stored %d, crawled %d: %w", s.RunID, got, want, ErrStoredRowsMismatch)
	}
	return nil
}

// Close implements RowSink. The repository's database handle is owned elsewhere.
func (s *RepositorySink) Close() error { return nil }
