package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"senate-bills/internal/domain/entity"
	"senate-bills/internal/infra/htmltree"
	"senate-bills/internal/observability/metrics"
	"senate-bills/internal/observability/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// DetailScraper extracts bills from a senator's bills page.
type DetailScraper struct {
	fetcher DocumentFetcher
	logger  *slog.Logger
}

// NewDetailScraper creates a DetailScraper reading pages through fetcher.
func NewDetailScraper(fetcher DocumentFetcher, logger *slog.Logger) *DetailScraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &DetailScraper{fetcher: fetcher, logger: logger}
}

// ExtractBills fetches detailURL and returns its bills in document order.
// A page without data rows yields an empty slice and no error.
func (s *DetailScraper) ExtractBills(ctx context.Context, detailURL string) (_ []entity.Bill, err error) {
	ctx, span := tracing.StartSpan(ctx, "scraper.extract_bills", attribute.String("url", detailURL))
	defer func() { tracing.EndSpan(span, err) }()

	root, err := s.fetcher.FetchDocument(ctx, metrics.PageDetail, detailURL)
	if err != nil {
		return nil, fmt.Errorf("extract bills: %w", err)
	}

	res := parseBills(root)
	metrics.RecordRowsSkipped(metrics.PageDetail, res.skipped)
	metrics.RecordRowsSkipped(metrics.PageDetailWindow, res.short)
	metrics.RecordBillsExtracted(len(res.bills))
	span.SetAttributes(attribute.Int("bills", len(res.bills)))

	if res.short > 0 {
		s.logger.Warn("bill rows too short for the output window",
			slog.String("url", detailURL),
			slog.Int("rows", res.short))
	}
	s.logger.Debug("bills extracted",
		slog.String("url", detailURL),
		slog.Int("bills", len(res.bills)),
		slog.Int("rows_skipped", res.skipped))

	return res.bills, nil
}

// ParseBills extracts bills from a parsed detail page.
func ParseBills(root *htmltree.Node) []entity.Bill {
	return parseBills(root).bills
}

type billParse struct {
	bills   []entity.Bill
	skipped int // wrong marker-cell count
	short   int // right count, too few cells for the window
}

func parseBills(root *htmltree.Node) billParse {
	res := billParse{bills: []entity.Bill{}}

	for _, row := range root.NestedMatches(rowTag, rowNesting) {
		if len(row.ElementsByClass(cellTag, billCellClass)) != markerCellsPerRow {
			res.skipped++
			continue
		}

		// The window is taken over every cell of the row, marked or not.
		cells := row.ChildElements("td", "th")
		if len(cells) < billWindowStart+billWindowSize {
			res.short++
			continue
		}
		window := cells[billWindowStart : billWindowStart+billWindowSize]

		res.bills = append(res.bills, entity.Bill{
			Description:    cellText(window[0]),
			Chamber:        cellText(window[1]),
			LastAction:     cellText(window[2]),
			LastActionDate: cellText(window[3]),
		})
	}

	return res
}
