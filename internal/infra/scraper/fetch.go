package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"senate-bills/internal/domain/entity"
	"senate-bills/internal/infra/htmltree"
	"senate-bills/internal/observability/metrics"
	"senate-bills/internal/observability/tracing"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultMaxBodySize caps how much of a page is read.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultUserAgent is sent with every request, robots.txt included.
	DefaultUserAgent = "SenateBillsBot/1.0"
)

var (
	// ErrInvalidURL is wrapped in a FetchError when a URL cannot be requested.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrDisallowedByRobots is wrapped in a FetchError when robots.txt forbids the URL.
	ErrDisallowedByRobots = errors.New("disallowed by robots.txt")
)

// DocumentFetcher fetches one page and returns its parsed tree.
// page names the page kind ("listing", "detail") for logs and metrics.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, page, pageURL string) (*htmltree.Node, error)
}

// PageFetcher fetches pages over HTTP and parses them leniently.
type PageFetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	robots      *RobotsGate
	logger      *slog.Logger
}

// Option configures a PageFetcher.
type Option func(*PageFetcher)

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(f *PageFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize overrides DefaultMaxBodySize. Non-positive values are ignored.
func WithMaxBodySize(n int64) Option {
	return func(f *PageFetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithRobotsGate checks every URL against robots.txt before fetching it.
func WithRobotsGate(g *RobotsGate) Option {
	return func(f *PageFetcher) { f.robots = g }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(f *PageFetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewPageFetcher creates a PageFetcher using client for every request.
func NewPageFetcher(client *http.Client, opts ...Option) *PageFetcher {
	f := &PageFetcher{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// UserAgent returns the User-Agent sent with requests.
func (f *PageFetcher) UserAgent() string {
	return f.userAgent
}

// FetchDocument GETs pageURL and parses the body into a node tree.
// Transport failures, non-2xx statuses, invalid URLs and robots.txt refusals
// are all returned as *entity.FetchError.
func (f *PageFetcher) FetchDocument(ctx context.Context, page, pageURL string) (_ *htmltree.Node, err error) {
	ctx, span := tracing.StartSpan(ctx, "scraper.fetch",
		attribute.String("page", page),
		attribute.String("url", pageURL))
	defer func() { tracing.EndSpan(span, err) }()

	u, err := validateURL(pageURL)
	if err != nil {
		return nil, &entity.FetchError{URL: pageURL, Err: err}
	}

	if f.robots != nil && !f.robots.Allowed(ctx, u) {
		metrics.RecordPageDisallowed(page)
		f.logger.Warn("page disallowed by robots.txt",
			slog.String("page", page),
			slog.String("url", pageURL))
		return nil, &entity.FetchError{URL: pageURL, Err: ErrDisallowedByRobots}
	}

	start := time.Now()
	doc, status, size, err := f.get(ctx, pageURL)
	duration := time.Since(start)
	metrics.RecordPageFetch(page, status, duration, size)
	span.SetAttributes(attribute.Int("http.status_code", status))
	if err != nil {
		return nil, err
	}

	f.logger.Debug("page fetched",
		slog.String("page", page),
		slog.String("url", pageURL),
		slog.Int("status", status),
		slog.Int("bytes", size),
		slog.String("title", strings.TrimSpace(doc.Find("title").First().Text())),
		slog.Duration("duration", duration))

	return htmltree.FromHTML(doc.Nodes[0]), nil
}

// get performs the request. status is 0 when no response was received.
func (f *PageFetcher) get(ctx context.Context, pageURL string) (*goquery.Document, int, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, 0, 0, &entity.FetchError{URL: pageURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, 0, &entity.FetchError{URL: pageURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, 0, &entity.FetchError{
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", resp.Status),
		}
	}

	// Limit body size to prevent memory exhaustion
	counter := &countingReader{r: io.LimitReader(resp.Body, f.maxBodySize)}

	// Legacy pages may declare windows-1252 or similar; decode to UTF-8
	decoded, err := charset.NewReader(counter, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, resp.StatusCode, counter.n, &entity.FetchError{URL: pageURL, Err: fmt.Errorf("decode body: %w", err)}
	}

	doc, err := goquery.NewDocumentFromReader(decoded)
	if err != nil {
		return nil, resp.StatusCode, counter.n, &entity.FetchError{URL: pageURL, Err: fmt.Errorf("parse HTML: %w", err)}
	}

	return doc, resp.StatusCode, counter.n, nil
}

// validateURL accepts absolute http and https URLs only.
func validateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u, nil
}

type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}
