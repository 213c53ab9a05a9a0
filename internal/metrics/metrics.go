// Package metrics records run metrics for the scrape and download passes.
// The registry is written to a node-exporter textfile after each run.
package metrics

import (
	"fmt"
	"time"

	"github.com/paulbousquet/fomcscrape/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// MetricsNamespace is the namespace for all fomcscrape metrics.
	MetricsNamespace = "fomcscrape"
)

// Download outcomes.
const (
	ResultDownloaded = "downloaded"
	ResultSkipped    = "skipped"
	ResultFailed     = "failed"
)

// Metrics holds the Prometheus collectors of one process.
type Metrics struct {
	registry *prometheus.Registry

	PagesFetchedTotal   *prometheus.CounterVec
	LinksDiscovered     *prometheus.CounterVec
	AmbiguousLinksTotal prometheus.Counter
	DownloadsTotal      *prometheus.CounterVec
	DownloadBytesTotal  prometheus.Counter
	RunDurationSeconds  *prometheus.GaugeVec
	LastRunTimestamp    *prometheus.GaugeVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	m := &Metrics{registry: reg}

	m.initScrapeMetrics(factory)
	m.initDownloadMetrics(factory)
	m.initRunMetrics(factory)

	return m
}

func (m *Metrics) initScrapeMetrics(factory promauto.Factory) {
	m.PagesFetchedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "scrape",
			Name:      "pages_fetched_total",
			Help:      "Listing page fetches by outcome (ok, timeout, http_status, transport)",
		},
		[]string{"result"},
	)

	m.LinksDiscovered = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "scrape",
			Name:      "links_discovered_total",
			Help:      "Classified links retained, before deduplication",
		},
		[]string{"doc_type"},
	)

	m.AmbiguousLinksTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "scrape",
			Name:      "ambiguous_links_total",
			Help:      "Links matched by more than one pattern",
		},
	)
}

func (m *Metrics) initDownloadMetrics(factory promauto.Factory) {
	m.DownloadsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "download",
			Name:      "files_total",
			Help:      "Artifact downloads by result (downloaded, skipped, failed)",
		},
		[]string{"doc_type", "result"},
	)

	m.DownloadBytesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "download",
			Name:      "bytes_total",
			Help:      "Bytes written to disk",
		},
	)
}

func (m *Metrics) initRunMetrics(factory promauto.Factory) {
	m.RunDurationSeconds = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last run",
		},
		[]string{"mode"},
	)

	m.LastRunTimestamp = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		},
		[]string{"mode"},
	)
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// PageFetched records a listing page outcome; result is "ok" or a failure reason.
func (m *Metrics) PageFetched(result string) {
	if m == nil {
		return
	}
	m.PagesFetchedTotal.WithLabelValues(result).Inc()
}

// LinkDiscovered records one retained link.
func (m *Metrics) LinkDiscovered(docType domain.DocType) {
	if m == nil {
		return
	}
	m.LinksDiscovered.WithLabelValues(docType.String()).Inc()
}

// AmbiguousLink records a link matched by more than one pattern.
func (m *Metrics) AmbiguousLink() {
	if m == nil {
		return
	}
	m.AmbiguousLinksTotal.Inc()
}

// Download records one artifact outcome and the bytes written.
func (m *Metrics) Download(docType domain.DocType, result string, bytes int64) {
	if m == nil {
		return
	}
	m.DownloadsTotal.WithLabelValues(docType.String(), result).Inc()
	if bytes > 0 {
		m.DownloadBytesTotal.Add(float64(bytes))
	}
}

// RunFinished records the duration and completion time of a run.
func (m *Metrics) RunFinished(mode string, duration time.Duration, finishedAt time.Time) {
	if m == nil {
		return
	}
	m.RunDurationSeconds.WithLabelValues(mode).Set(duration.Seconds())
	m.LastRunTimestamp.WithLabelValues(mode).Set(float64(finishedAt.Unix()))
}

// WriteTextfile writes the registry in the text exposition format. An empty
// path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
