package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/paulbousquet/fomcscrape/internal/collector"
	"github.com/paulbousquet/fomcscrape/internal/config"
	"github.com/paulbousquet/fomcscrape/internal/logger"
	"github.com/paulbousquet/fomcscrape/internal/manifest"
	"github.com/paulbousquet/fomcscrape/internal/report"
	"github.com/paulbousquet/fomcscrape/internal/search"
	"github.com/paulbousquet/fomcscrape/internal/store"
)

// ManifestResult is the outcome of a manifest pass.
type ManifestResult struct {
	Collect *collector.Result
	Summary *report.Summary
}

// RunManifest scrapes the manifest years and writes every configured sink.
func (r *Runtime) RunManifest(ctx context.Context) (*ManifestResult, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	years := r.Config.Manifest.Years

	tracking, stopProgress := r.startProgress()
	col, err := r.NewCollector(years, tracking)
	if err != nil {
		stopProgress()
		return nil, err
	}
	res, err := col.Collect(ctx)
	stopProgress()
	if err != nil {
		return nil, err
	}

	sinks, closeSinks, err := r.ManifestSinks(ctx)
	if err != nil {
		return nil, err
	}
	defer closeSinks()

	if err = sinks.Write(ctx, res.Links); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	summary := report.NewSummary(summaryTitle("FOMC documents", years), res.Links)
	summary.Render(r.Out)

	r.Logger.Info("Manifest complete",
		logger.Int("links", len(res.Links)),
		logger.Strings("sinks", r.Config.Manifest.Sinks),
	)
	r.finish(config.ModeManifest, start)

	return &ManifestResult{Collect: res, Summary: summary}, nil
}

// ManifestSinks opens the configured sinks in order. The returned function
// releases any connection they hold.
func (r *Runtime) ManifestSinks(ctx context.Context) (collector.MultiSink, func(), error) {
	var (
		sinks   collector.MultiSink
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	for _, name := range r.Config.Manifest.Sinks {
		switch name {
		case config.SinkCSV:
			sinks = append(sinks, collector.NamedSink{
				Name: name,
				Sink: manifest.NewWriter(r.Config.Manifest.Path, r.Logger),
			})

		case config.SinkDatabase:
			db, err := store.Open(ctx, store.Config{Driver: r.Config.Database.Driver, DSN: r.Config.Database.DSN})
			if err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("database sink: %w", err)
			}
			closers = append(closers, func() { _ = db.Close() })

			repo := store.NewRepository(db, r.Logger)
			if err = repo.Migrate(ctx); err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("database sink: %w", err)
			}
			sinks = append(sinks, collector.NamedSink{Name: name, Sink: repo})

		case config.SinkElasticsearch:
			es := r.Config.Elasticsearch
			client, err := search.NewClient(search.Config{
				Addresses: es.Addresses,
				Username:  es.Username,
				Password:  es.Password,
				APIKey:    es.APIKey,
			}, r.Transport)
			if err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("elasticsearch sink: %w", err)
			}
			sinks = append(sinks, collector.NamedSink{
				Name: name,
				Sink: search.NewIndexer(client, es.Index, r.Logger),
			})

		default:
			closeAll()
			return nil, nil, fmt.Errorf("unknown sink %q", name)
		}
	}

	return sinks, closeAll, nil
}
