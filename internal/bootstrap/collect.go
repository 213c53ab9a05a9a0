package bootstrap

import (
	"fmt"

	"github.com/paulbousquet/fomcscrape/internal/classify"
	"github.com/paulbousquet/fomcscrape/internal/collector"
	"github.com/paulbousquet/fomcscrape/internal/config"
	"github.com/paulbousquet/fomcscrape/internal/domain"
	"github.com/paulbousquet/fomcscrape/internal/fetcher"
	"github.com/paulbousquet/fomcscrape/internal/report"
)

func patternSpecs(patterns []config.PatternConfig) []classify.PatternSpec {
	specs := make([]classify.PatternSpec, 0, len(patterns))
	for _, p := range patterns {
		specs = append(specs, classify.PatternSpec{DocType: p.DocType, Pattern: p.Pattern})
	}
	return specs
}

// NewClassifier compiles the configured pattern tables.
func NewClassifier(cfg config.ClassifyConfig) (*classify.Classifier, error) {
	rules, err := classify.NewRules(
		cfg.ArchiveYears,
		patternSpecs(cfg.StandardPatterns),
		patternSpecs(cfg.ArchivePatterns),
	)
	if err != nil {
		return nil, fmt.Errorf("compile classification rules: %w", err)
	}
	return classify.New(rules), nil
}

// NewCollector builds the discovery pipeline for years.
func (r *Runtime) NewCollector(years domain.YearRange, tracking report.Tracking) (*collector.Collector, error) {
	classifier, err := NewClassifier(r.Config.Classify)
	if err != nil {
		return nil, err
	}

	pages := fetcher.New(fetcher.Config{
		UserAgent:   r.Config.Scrape.UserAgent,
		Timeout:     r.Config.Scrape.PageTimeout,
		MaxBodySize: r.Config.Scrape.MaxPageBytes,
	}, r.Transport, r.Logger)

	return collector.New(
		collector.Config{
			PageURLTemplate: r.Config.Scrape.PageURLTemplate,
			Years:           years,
			Strict:          r.Config.Classify.Strict,
		},
		pages,
		classifier,
		r.Logger,
		collector.WithMetrics(r.Metrics),
		collector.WithProgress(tracking),
	)
}
