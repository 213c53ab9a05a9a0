package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/paulbousquet/fomcscrape/internal/config"
	"github.com/paulbousquet/fomcscrape/internal/domain"
	"github.com/paulbousquet/fomcscrape/internal/download"
	"github.com/paulbousquet/fomcscrape/internal/httpclient"
	"github.com/paulbousquet/fomcscrape/internal/logger"
	"github.com/paulbousquet/fomcscrape/internal/manifest"
	"github.com/paulbousquet/fomcscrape/internal/report"
)

// DownloadResult is the outcome of a download pass.
type DownloadResult struct {
	Links   []domain.DiscoveredLink
	Report  download.Report
	Summary *report.Summary
}

// RunDownload downloads the artifacts of the download years, or of the links
// listed in fromManifest when it is set.
func (r *Runtime) RunDownload(ctx context.Context, fromManifest string) (*DownloadResult, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	cfg := r.Config.Download

	directories := make(map[domain.DocType]string, len(domain.AllDocTypes()))
	for _, d := range domain.AllDocTypes() {
		dir, _ := cfg.DirectoryFor(d)
		directories[d] = dir
	}

	tracking, stopProgress := r.startProgress()
	defer stopProgress()

	links, title, err := r.downloadLinks(ctx, fromManifest, tracking)
	if err != nil {
		return nil, err
	}

	counts := domain.CountByDocType(links)
	r.Logger.Info("Found unique links",
		logger.Int("links", len(links)),
		logger.Int("greenbook", counts[domain.Greenbook]),
		logger.Int("bluebook", counts[domain.Bluebook]),
		logger.Int("tealbook", counts[domain.Tealbook]),
	)

	summary := report.NewSummary(title, links)
	summary.Downloads = true

	client := httpclient.NewClient(httpclient.WithUserAgent(r.Transport, r.Config.Scrape.UserAgent), cfg.Timeout)
	d, err := download.New(
		download.Config{Root: cfg.Root, Directories: directories},
		client,
		r.Logger,
		download.WithMetrics(r.Metrics),
		download.WithProgress(tracking),
		download.WithObserver(summary),
	)
	if err != nil {
		return nil, err
	}

	rep, err := d.Download(ctx, links)
	if err != nil {
		return nil, err
	}

	stopProgress()
	summary.Render(r.Out)

	r.Logger.Info("Downloaded new files", logger.Int("downloaded", rep.Downloaded))
	r.finish(config.ModeDownload, start)

	return &DownloadResult{Links: links, Report: rep, Summary: summary}, nil
}

func (r *Runtime) downloadLinks(
	ctx context.Context,
	fromManifest string,
	tracking report.Tracking,
) ([]domain.DiscoveredLink, string, error) {
	if fromManifest != "" {
		links, err := manifest.Read(fromManifest)
		if err != nil {
			return nil, "", err
		}
		return links, fmt.Sprintf("Downloads from %s", fromManifest), nil
	}

	years := r.Config.Download.Years
	col, err := r.NewCollector(years, tracking)
	if err != nil {
		return nil, "", err
	}
	res, err := col.Collect(ctx)
	if err != nil {
		return nil, "", err
	}
	return res.Links, summaryTitle("Downloads", years), nil
}
