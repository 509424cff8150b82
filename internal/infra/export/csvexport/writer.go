// Package csvexport writes joined bill rows to a comma-separated file.
package csvexport

import (
	"context"
	"encoding/csv"
	"log/slog"
	"os"

	"senate-bills/internal/domain/entity"
	"senate-bills/internal/observability/metrics"
)

// FileSink writes rows to a CSV file. The file is created, truncating any
// existing one, on the first WriteRows call, so a crawl that fails before
// writing leaves the previous file untouched. Every call is flushed to disk.
type FileSink struct {
	path   string
	logger *slog.Logger

	file    *os.File
	w       *csv.Writer
	written int
}

// NewFileSink creates a sink for path. Nothing is opened yet.
func NewFileSink(path string, logger *slog.Logger) *FileSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSink{path: path, logger: logger}
}

// Path returns the output path.
func (s *FileSink) Path() string { return s.path }

// Written returns the number of data rows written so far.
func (s *FileSink) Written() int { return s.written }

// WriteRows appends rows, writing the header first if the file is new.
// Filesystem failures are returned as *entity.OutputWriteError.
func (s *FileSink) WriteRows(_ context.Context, rows []entity.BillRow) error {
	if s.w == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if err := writeRecords(s.w, rows); err != nil {
		return &entity.OutputWriteError{Path: s.path, Err: err}
	}
	s.written += len(rows)
	metrics.RecordRowsWritten("csv", len(rows))

	s.logger.Debug("rows flushed to csv",
		slog.String("path", s.path),
		slog.Int("rows", len(rows)),
		slog.Int("total", s.written))
	return nil
}

func (s *FileSink) open() error {
	f, err := os.Create(s.path)
	if err != nil {
		return &entity.OutputWriteError{Path: s.path, Err: err}
	}
	s.file = f
	s.w = csv.NewWriter(f)

	if err := s.w.Write(entity.BillRowHeader); err != nil {
		return &entity.OutputWriteError{Path: s.path, Err: err}
	}
	return nil
}

// Close flushes and closes the file. Closing an unopened sink is a no-op.
func (s *FileSink) Close() error {
	if s.file == nil {
		return nil
	}
	s.w.Flush()
	flushErr := s.w.Error()
	closeErr := s.file.Close()
	s.file = nil
	if flushErr != nil {
		return &entity.OutputWriteError{Path: s.path, Err: flushErr}
	}
	if closeErr != nil {
		return &entity.OutputWriteError{Path: s.path, Err: closeErr}
	}
	s.logger.Info("csv written",
		slog.String("path", s.path),
		slog.Int("rows", s.written))
	return nil
}

// WriteFile writes the header and rows to path in one go.
func WriteFile(path string, rows []entity.BillRow) error {
	sink := NewFileSink(path, nil)
	if err := sink.WriteRows(context.Background(), rows); err != nil {
		_ = sink.Close()
		return err
	}
	return sink.Close()
}

func writeRecords(w *csv.Writer, rows []entity.BillRow) error {
	for _, r := range rows {
		if err := w.Write(r.Record()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
