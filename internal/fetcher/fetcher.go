// Package fetcher retrieves FOMC historical listing pages.
package fetcher

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/paulbousquet/fomcscrape/internal/logger"
)

const (
	// DefaultTimeout bounds each listing page request.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxBodySize caps listing page bodies.
	DefaultMaxBodySize = 10 * 1024 * 1024
	// YearPlaceholder is substituted in page URL templates.
	YearPlaceholder = "{year}"
)

// Config configures a PageFetcher.
type Config struct {
	UserAgent   string
	Timeout     time.Duration
	MaxBodySize int
}

// WithDefaults fills zero values with the package defaults.
func (c Config) WithDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxBodySize <= 0 {
		c.MaxBodySize = DefaultMaxBodySize
	}
	return c
}

// PageURL builds the listing page URL for year from a template.
func PageURL(template string, year int) string {
	return strings.ReplaceAll(template, YearPlaceholder, strconv.Itoa(year))
}

// Fetcher retrieves a single page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) Result
}

// PageFetcher fetches listing pages through a colly collector.
type PageFetcher struct {
	collector *colly.Collector
	log       logger.Logger
}

var _ Fetcher = (*PageFetcher)(nil)

// New creates a PageFetcher. The transport is shared with other clients of
// the run; the request timeout applies to this fetcher only.
func New(cfg Config, transport http.RoundTripper, log logger.Logger) *PageFetcher {
	cfg = cfg.WithDefaults()
	if log == nil {
		log = logger.NewNop()
	}

	opts := []colly.CollectorOption{
		colly.IgnoreRobotsTxt(),
		// The same page may be requested again by a later scheduled run.
		colly.AllowURLRevisit(),
		colly.MaxBodySize(cfg.MaxBodySize),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, colly.UserAgent(cfg.UserAgent))
	}

	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(cfg.Timeout)
	if transport != nil {
		c.WithTransport(transport)
	}

	return &PageFetcher{collector: c, log: log}
}

// Fetch retrieves pageURL. Failures are reported in the result, never panics
// or aborts the caller.
func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) Result {
	start := time.Now()

	c := f.collector.Clone()
	c.Context = ctx

	var (
		result Result
		done   bool
	)
	c.OnResponse(func(r *colly.Response) {
		result = success(pageURL, r.StatusCode, r.Body)
		done = true
	})
	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		result = failure(pageURL, status, err)
		done = true
	})

	visitErr := c.Visit(pageURL)
	if !done {
		// Visit rejected the request before any callback ran.
		result = failure(pageURL, 0, visitErr)
	}

	if result.OK() {
		f.log.Debug("Fetched page",
			logger.URL(pageURL),
			logger.Int("status", result.StatusCode),
			logger.Int("bytes", len(result.Body)),
			logger.Duration("duration", time.Since(start)),
		)
	} else {
		f.log.Debug("Page fetch failed",
			logger.URL(pageURL),
			logger.String("reason", string(result.Err.Reason)),
			logger.Int("status", result.StatusCode),
			logger.Duration("duration", time.Since(start)),
		)
	}

	return result
}
