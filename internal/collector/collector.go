// Package collector runs the discovery pipeline: fetch each year's listing
// page, extract its anchors, classify them and deduplicate the result.
package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paulbousquet/fomcscrape/internal/classify"
	"github.com/paulbousquet/fomcscrape/internal/domain"
	"github.com/paulbousquet/fomcscrape/internal/extractor"
	"github.com/paulbousquet/fomcscrape/internal/fetcher"
	"github.com/paulbousquet/fomcscrape/internal/logger"
	"github.com/paulbousquet/fomcscrape/internal/metrics"
	"github.com/paulbousquet/fomcscrape/internal/report"
)

// ErrMissingTemplate is returned when the page URL template has no year placeholder.
var ErrMissingTemplate = errors.New("page url template must contain " + fetcher.YearPlaceholder)

// Config holds the pipeline inputs.
type Config struct {
	// PageURLTemplate is the listing page URL with a {year} placeholder.
	PageURLTemplate string
	// Years are scraped in ascending order.
	Years domain.YearRange
	// Strict drops links matched by more than one pattern.
	Strict bool
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !strings.Contains(c.PageURLTemplate, fetcher.YearPlaceholder) {
		return ErrMissingTemplate
	}
	if err := c.Years.Validate(); err != nil {
		return fmt.Errorf("years: %w", err)
	}
	return nil
}

// Result is the outcome of a full pass.
type Result struct {
	// Links are deduplicated, in first-seen order.
	Links []domain.DiscoveredLink
	// Discovered counts classified links before deduplication.
	Discovered   int
	PagesFetched int
	PagesFailed  int
	Ambiguous    int
}

// Collector discovers artifact links across a range of years.
type Collector struct {
	cfg        Config
	fetcher    fetcher.Fetcher
	classifier *classify.Classifier
	log        logger.Logger
	metrics    *metrics.Metrics
	progress   report.Tracking
}

// Option configures a Collector.
type Option func(*Collector)

// WithMetrics records pipeline counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Collector) {
		c.metrics = m
	}
}

// WithProgress advances a tracker once per year.
func WithProgress(p report.Tracking) Option {
	return func(c *Collector) {
		if p != nil {
			c.progress = p
		}
	}
}

// New creates a Collector.
func New(
	cfg Config,
	f fetcher.Fetcher,
	classifier *classify.Classifier,
	log logger.Logger,
	opts ...Option,
) (*Collector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid collector config: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}

	c := &Collector{
		cfg:        cfg,
		fetcher:    f,
		classifier: classifier,
		log:        log,
		progress:   report.NoProgress(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Collect scrapes every configured year and returns the deduplicated links.
// A page that cannot be fetched contributes nothing; only cancellation of
// ctx stops the pass early.
func (c *Collector) Collect(ctx context.Context) (*Result, error) {
	start := time.Now()
	years := c.cfg.Years.Years()
	tracker := c.progress.Track("Scraping years", len(years))
	defer tracker.MarkAsDone()

	result := &Result{}
	var all []domain.DiscoveredLink

	for _, year := range years {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("collect interrupted at %d: %w", year, err)
		}

		page := c.collectYear(ctx, year)
		if page.fetched {
			result.PagesFetched++
		} else {
			result.PagesFailed++
		}
		result.Ambiguous += page.ambiguous
		all = append(all, page.links...)

		tracker.Increment(1)
	}

	result.Discovered = len(all)
	result.Links = Deduplicate(all)

	c.log.Info("Collection complete",
		logger.String("years", c.cfg.Years.String()),
		logger.Int("pages_fetched", result.PagesFetched),
		logger.Int("pages_failed", result.PagesFailed),
		logger.Int("discovered", result.Discovered),
		logger.Int("unique", len(result.Links)),
		logger.Int("ambiguous", result.Ambiguous),
		logger.Duration("duration", time.Since(start)),
	)

	return result, nil
}

type pageResult struct {
	links     []domain.DiscoveredLink
	fetched   bool
	ambiguous int
}

// collectYear fetches and classifies one listing page. Failures are logged
// and yield no links.
func (c *Collector) collectYear(ctx context.Context, year int) pageResult {
	pageURL := fetcher.PageURL(c.cfg.PageURLTemplate, year)
	log := c.log.With(logger.Year(year), logger.URL(pageURL))

	res := c.fetcher.Fetch(ctx, pageURL)
	if !res.OK() {
		c.metrics.PageFetched(string(res.Err.Reason))
		log.Warn("Failed to fetch page",
			logger.String("reason", string(res.Err.Reason)),
			logger.Int("status", res.Err.StatusCode),
			logger.Error(res.Err),
		)
		return pageResult{}
	}
	c.metrics.PageFetched("ok")

	links, ambiguous, err := c.ClassifyPage(res.Body, pageURL, year)
	if err != nil {
		log.Warn("Failed to extract links", logger.Error(err))
		return pageResult{fetched: true}
	}

	log.Info("Scraped year", logger.Int("links", len(links)))

	return pageResult{links: links, fetched: true, ambiguous: ambiguous}
}

// ClassifyPage turns one page's markup into the links it publishes for year.
// It returns the retained links in document order and the number of
// ambiguous matches seen.
func (c *Collector) ClassifyPage(body []byte, pageURL string, year int) ([]domain.DiscoveredLink, int, error) {
	anchors, err := extractor.Extract(body, pageURL)
	if err != nil {
		return nil, 0, err
	}

	var (
		links     []domain.DiscoveredLink
		ambiguous int
	)
	for _, a := range anchors {
		decision := c.classifier.Classify(a.Href, year)
		if !decision.Matched() {
			continue
		}
		if a.URL == "" {
			c.log.Debug("Skipping unresolvable link", logger.Year(year), logger.String("href", a.Href))
			continue
		}
		if decision.Ambiguous() {
			ambiguous++
			c.metrics.AmbiguousLink()
			c.log.Warn("Link matches more than one document type",
				logger.Year(year),
				logger.URL(a.URL),
				logger.Any("matches", decision.Matches),
				logger.Bool("dropped", c.cfg.Strict),
			)
			if c.cfg.Strict {
				continue
			}
		}

		c.metrics.LinkDiscovered(decision.DocType)
		links = append(links, domain.DiscoveredLink{
			SourceURL:  a.URL,
			DocType:    decision.DocType,
			FileType:   decision.FileType,
			Year:       year,
			LinkText:   a.Text,
			ContextURL: pageURL,
		})
	}

	return links, ambiguous, nil
}
