package scraper

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"senate-bills/internal/observability/metrics"

	"github.com/temoto/robotstxt"
)

// maxRobotsSize caps how much of a robots.txt is read.
const maxRobotsSize = 512 * 1024

// RobotsGate answers whether a URL may be fetched according to its host's
// robots.txt. Each host's file is fetched once and cached for the life of the gate.
type RobotsGate struct {
	client *http.Client
	agent  string
	logger *slog.Logger

	mu     sync.Mutex
	groups map[string]*robotstxt.Group // keyed by scheme://host
}

// NewRobotsGate creates a gate that matches rules for agent.
func NewRobotsGate(client *http.Client, agent string, logger *slog.Logger) *RobotsGate {
	if logger == nil {
		logger = slog.Default()
	}
	return &RobotsGate{
		client: client,
		agent:  agent,
		logger: logger,
		groups: make(map[string]*robotstxt.Group),
	}
}

// Allowed reports whether u may be fetched. A robots.txt that cannot be
// fetched or parsed allows everything.
func (g *RobotsGate) Allowed(ctx context.Context, u *url.URL) bool {
	group := g.group(ctx, u)
	if group == nil {
		return true
	}
	return group.Test(u.RequestURI())
}

func (g *RobotsGate) group(ctx context.Context, u *url.URL) *robotstxt.Group {
	key := u.Scheme + "://" + u.Host

	g.mu.Lock()
	defer g.mu.Unlock()

	if group, ok := g.groups[key]; ok {
		return group
	}

	group := g.load(ctx, key)
	g.groups[key] = group
	return group
}

// load fetches and parses key/robots.txt. Status handling follows
// robotstxt.FromStatusAndBytes: 4xx allows all, 5xx disallows all.
func (g *RobotsGate) load(ctx context.Context, origin string) *robotstxt.Group {
	robotsURL := origin + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", g.agent)

	resp, err := g.client.Do(req)
	if err != nil {
		metrics.RecordPageFetch(metrics.PageRobots, 0, 0, 0)
		g.logger.Warn("could not fetch robots.txt, allowing all",
			slog.String("url", robotsURL),
			slog.Any("error", err))
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
	if err != nil {
		g.logger.Warn("could not read robots.txt, allowing all",
			slog.String("url", robotsURL),
			slog.Any("error", err))
		return nil
	}
	metrics.RecordPageFetch(metrics.PageRobots, resp.StatusCode, 0, len(body))

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		g.logger.Warn("could not parse robots.txt, allowing all",
			slog.String("url", robotsURL),
			slog.Any("error", err))
		return nil
	}

	g.logger.Debug("robots.txt loaded",
		slog.String("url", robotsURL),
		slog.Int("status", resp.StatusCode))
	return data.FindGroup(g.agent)
}
