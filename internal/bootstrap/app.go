// Package bootstrap wires configuration into the pipeline components and runs
// one pass of either mode.
//
// A pass follows these phases:
//   - Phase 1: Collect - build the classifier and fetcher, scrape every year
//     (skipped by download --from-manifest, which reads links from a CSV)
//   - Phase 2: Persist - write the manifest sinks, or download the artifacts
//   - Phase 3: Report - render the per-category summary
//   - Phase 4: Metrics - record the run and write the textfile
package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/paulbousquet/fomcscrape/internal/config"
	"github.com/paulbousquet/fomcscrape/internal/logger"
	"github.com/paulbousquet/fomcscrape/internal/metrics"
	"github.com/paulbousquet/fomcscrape/internal/report"
)

// ErrConfigRequired is returned when a Runtime has no configuration.
var ErrConfigRequired = errors.New("config is required")

// Runtime holds what every pass shares.
type Runtime struct {
	Config *config.Config
	Logger logger.Logger
	// Transport is shared by the page fetcher, the downloader and the
	// Elasticsearch client.
	Transport http.RoundTripper
	Metrics   *metrics.Metrics
	// Out receives the summary table and progress bars.
	Out io.Writer
}

// Validate fills optional fields and checks required ones.
func (r *Runtime) Validate() error {
	if r.Config == nil {
		return ErrConfigRequired
	}
	if r.Logger == nil {
		r.Logger = logger.NewNop()
	}
	if r.Transport == nil {
		r.Transport = http.DefaultTransport
	}
	if r.Out == nil {
		r.Out = os.Stdout
	}
	return nil
}

// startProgress returns the trackers for one pass and a function stopping them.
func (r *Runtime) startProgress() (report.Tracking, func()) {
	if !r.Config.App.Progress {
		return report.NoProgress(), func() {}
	}
	p := report.NewProgress(r.Out)
	return p, p.Stop
}

// finish records the run metrics and writes the textfile if configured.
func (r *Runtime) finish(mode string, start time.Time) {
	finishedAt := time.Now()
	r.Metrics.RunFinished(mode, finishedAt.Sub(start), finishedAt)
	if err := r.Metrics.WriteTextfile(r.Config.Metrics.TextfilePath); err != nil {
		r.Logger.Warn("Failed to write metrics", logger.Error(err))
	}
}

func summaryTitle(prefix string, years fmt.Stringer) string {
	return fmt.Sprintf("%s %s", prefix, years)
}
