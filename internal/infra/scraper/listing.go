package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"senate-bills/internal/domain/entity"
	"senate-bills/internal/infra/htmltree"
	"senate-bills/internal/observability/metrics"
	"senate-bills/internal/observability/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// ListingScraper extracts senators from the senate members index.
type ListingScraper struct {
	fetcher    DocumentFetcher
	detailBase string
	logger     *slog.Logger
}

// ListingOption configures a ListingScraper.
type ListingOption func(*ListingScraper)

// WithDetailBaseURL replaces DetailBaseURL as the prefix of detail URLs.
func WithDetailBaseURL(base string) ListingOption {
	return func(s *ListingScraper) { s.detailBase = base }
}

// WithListingLogger sets the logger. The default is slog.Default().
func WithListingLogger(l *slog.Logger) ListingOption {
	return func(s *ListingScraper) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewListingScraper creates a ListingScraper reading pages through fetcher.
func NewListingScraper(fetcher DocumentFetcher, opts ...ListingOption) *ListingScraper {
	s := &ListingScraper{
		fetcher:    fetcher,
		detailBase: DetailBaseURL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExtractSenators fetches pageURL and returns its senators in document order.
// A fetch failure is returned as *entity.FetchError; a non-numeric district
// as *entity.FieldCoercionError.
func (s *ListingScraper) ExtractSenators(ctx context.Context, pageURL string) (_ []entity.Senator, err error) {
	ctx, span := tracing.StartSpan(ctx, "scraper.extract_senators", attribute.String("url", pageURL))
	defer func() { tracing.EndSpan(span, err) }()

	root, err := s.fetcher.FetchDocument(ctx, metrics.PageListing, pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract senators: %w", err)
	}

	senators, skipped, err := parseSenators(root, s.detailBase)
	metrics.RecordRowsSkipped(metrics.PageListing, skipped)
	if err != nil {
		return nil, fmt.Errorf("extract senators: %w", err)
	}
	metrics.RecordSenatorsExtracted(len(senators))
	span.SetAttributes(attribute.Int("senators", len(senators)))

	s.logger.Info("senators extracted",
		slog.String("url", pageURL),
		slog.Int("senators", len(senators)),
		slog.Int("rows_skipped", skipped))

	return senators, nil
}

// ParseSenators extracts senators from a parsed listing page, building detail
// URLs on DetailBaseURL.
func ParseSenators(root *htmltree.Node) ([]entity.Senator, error) {
	senators, _, err := parseSenators(root, DetailBaseURL)
	return senators, err
}

// parseSenators also returns the number of matched rows rejected by the
// marker-cell count.
func parseSenators(root *htmltree.Node, detailBase string) ([]entity.Senator, int, error) {
	var senators []entity.Senator
	skipped := 0

	for i, row := range root.NestedMatches(rowTag, rowNesting) {
		cells := row.ElementsByClass(cellTag, senatorCellClass)
		if len(cells) != markerCellsPerRow {
			skipped++
			continue
		}

		districtText := cellText(cells[districtCell])
		district, err := strconv.Atoi(districtText)
		if err != nil {
			return nil, skipped, &entity.FieldCoercionError{Field: "district", Value: districtText, Err: err}
		}

		anchors := row.Elements("a")
		if len(anchors) <= detailAnchorIndex {
			return nil, skipped, &entity.LayoutError{
				Page:   metrics.PageListing,
				Row:    i,
				Detail: fmt.Sprintf("expected at least %d links, found %d", detailAnchorIndex+1, len(anchors)),
			}
		}
		href, ok := anchors[detailAnchorIndex].Attr("href")
		if !ok {
			return nil, skipped, &entity.LayoutError{
				Page:   metrics.PageListing,
				Row:    i,
				Detail: "bills link has no href",
			}
		}

		senators = append(senators, entity.Senator{
			Name:      cellText(cells[nameCell]),
			District:  district,
			Party:     cellText(cells[partyCell]),
			DetailURL: joinDetailURL(detailBase, href),
		})
	}

	return senators, skipped, nil
}

// cellText returns a cell's text with surrounding whitespace (NBSP included) removed.
func cellText(n *htmltree.Node) string {
	return strings.TrimSpace(n.TextContent())
}
