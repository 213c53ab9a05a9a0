// Package download fetches discovered artifacts into per-category directories.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/paulbousquet/fomcscrape/internal/domain"
	"github.com/paulbousquet/fomcscrape/internal/fetcher"
	"github.com/paulbousquet/fomcscrape/internal/logger"
	"github.com/paulbousquet/fomcscrape/internal/metrics"
	"github.com/paulbousquet/fomcscrape/internal/report"
)

// DefaultTimeout bounds each artifact request.
const DefaultTimeout = 60 * time.Second

const dirPerm = 0o755

var (
	// ErrNoDirectory is returned when a document type has no target directory.
	ErrNoDirectory = errors.New("no directory configured for document type")
	// ErrNoFilename is returned when a URL path has no usable basename.
	ErrNoFilename = errors.New("url has no file name")
)

// Config describes where artifacts are stored.
type Config struct {
	// Root is the parent of the category directories.
	Root string
	// Directories maps each document type to its directory under Root.
	Directories map[domain.DocType]string
}

// Validate checks that every document type has a directory.
func (c Config) Validate() error {
	for _, d := range domain.AllDocTypes() {
		if c.Directories[d] == "" {
			return fmt.Errorf("%w: %s", ErrNoDirectory, d)
		}
	}
	return nil
}

// Destination returns <root>/<dir>/<basename of the URL path>.
func Destination(root, dir, sourceURL string) (string, error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", sourceURL, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("%w: %s", ErrNoFilename, sourceURL)
	}
	return filepath.Join(root, dir, name), nil
}

// Observer is notified of each per-link outcome.
type Observer interface {
	Downloaded(docType domain.DocType)
	Skipped(docType domain.DocType)
	Failed(docType domain.DocType)
}

// Report counts per-link outcomes of a download pass.
type Report struct {
	Downloaded int
	Skipped    int
	Failed     int
	Bytes      int64
}

// Downloader fetches links sequentially, skipping files already on disk.
type Downloader struct {
	cfg      Config
	client   *http.Client
	log      logger.Logger
	metrics  *metrics.Metrics
	progress report.Tracking
	observer Observer
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithMetrics records download counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Downloader) {
		d.metrics = m
	}
}

// WithProgress advances a tracker once per link.
func WithProgress(p report.Tracking) Option {
	return func(d *Downloader) {
		if p != nil {
			d.progress = p
		}
	}
}

// WithObserver reports each outcome to o.
func WithObserver(o Observer) Option {
	return func(d *Downloader) {
		d.observer = o
	}
}

// New creates a Downloader. The client's timeout bounds each artifact.
func New(cfg Config, client *http.Client, log logger.Logger, opts ...Option) (*Downloader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if log == nil {
		log = logger.NewNop()
	}

	d := &Downloader{
		cfg:      cfg,
		client:   client,
		log:      log,
		progress: report.NoProgress(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// EnsureDirectories creates the category directories if absent.
func (d *Downloader) EnsureDirectories() error {
	for _, docType := range domain.AllDocTypes() {
		dir := filepath.Join(d.cfg.Root, d.cfg.Directories[docType])
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("create %s directory: %w", docType, err)
		}
	}
	return nil
}

type outcome int

const (
	outcomeDownloaded outcome = iota
	outcomeSkipped
	outcomeFailed
)

// Download fetches every link in order. Per-link failures are logged and
// counted; only directory creation failure or cancellation of ctx returns
// an error.
func (d *Downloader) Download(ctx context.Context, links []domain.DiscoveredLink) (Report, error) {
	var rep Report
	if err := d.EnsureDirectories(); err != nil {
		return rep, err
	}

	tracker := d.progress.Track("Downloading files", len(links))
	defer tracker.MarkAsDone()

	for i := range links {
		if err := ctx.Err(); err != nil {
			return rep, fmt.Errorf("download interrupted after %d of %d: %w", i, len(links), err)
		}

		link := &links[i]
		result, written := d.downloadOne(ctx, link)
		switch result {
		case outcomeDownloaded:
			rep.Downloaded++
			rep.Bytes += written
			d.metrics.Download(link.DocType, metrics.ResultDownloaded, written)
			if d.observer != nil {
				d.observer.Downloaded(link.DocType)
			}
		case outcomeSkipped:
			rep.Skipped++
			d.metrics.Download(link.DocType, metrics.ResultSkipped, 0)
			if d.observer != nil {
				d.observer.Skipped(link.DocType)
			}
		case outcomeFailed:
			rep.Failed++
			d.metrics.Download(link.DocType, metrics.ResultFailed, 0)
			if d.observer != nil {
				d.observer.Failed(link.DocType)
			}
		}
		tracker.Increment(1)
	}

	d.log.Info("Download complete",
		logger.Int("downloaded", rep.Downloaded),
		logger.Int("skipped", rep.Skipped),
		logger.Int("failed", rep.Failed),
		logger.Int64("bytes", rep.Bytes),
	)
	return rep, nil
}

func (d *Downloader) downloadOne(ctx context.Context, link *domain.DiscoveredLink) (outcome, int64) {
	log := d.log.With(logger.URL(link.SourceURL), logger.String("doc_type", link.DocType.String()))

	dest, err := Destination(d.cfg.Root, d.cfg.Directories[link.DocType], link.SourceURL)
	if err != nil {
		log.Warn("Failed to download", logger.Error(err))
		return outcomeFailed, 0
	}

	if _, statErr := os.Stat(dest); statErr == nil {
		log.Debug("File exists, skipping", logger.String("path", dest))
		return outcomeSkipped, 0
	} else if !errors.Is(statErr, os.ErrNotExist) {
		log.Warn("Failed to download", logger.String("path", dest), logger.Error(statErr))
		return outcomeFailed, 0
	}

	written, err := d.fetchTo(ctx, link.SourceURL, dest)
	if err != nil {
		log.Warn("Failed to download", logger.String("path", dest), logger.Error(err))
		return outcomeFailed, 0
	}

	log.Debug("Downloaded file", logger.String("path", dest), logger.Int64("bytes", written))
	return outcomeDownloaded, written
}

// fetchTo streams sourceURL into a temporary file next to dest and renames it
// into place once the body is complete.
func (d *Downloader) fetchTo(ctx context.Context, sourceURL, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, http.NoBody)
	if err != nil {
		return 0, fetcher.NewFetchError(sourceURL, 0, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fetcher.NewFetchError(sourceURL, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, fetcher.NewFetchError(sourceURL, resp.StatusCode, nil)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	written, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil {
		_ = os.Remove(tmpName)
		return 0, fetcher.NewFetchError(sourceURL, 0, copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("close temp file: %w", closeErr)
	}

	if err = os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("rename into place: %w", err)
	}
	return written, nil
}
