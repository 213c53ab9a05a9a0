package report_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/paulbousquet/fomcscrape/internal/domain"
	"github.com/paulbousquet/fomcscrape/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLinks() []domain.DiscoveredLink {
	return []domain.DiscoveredLink{
		{SourceURL: "a", DocType: domain.Greenbook},
		{SourceURL: "b", DocType: domain.Greenbook},
		{SourceURL: "c", DocType: domain.Tealbook},
	}
}

func TestSummary_RowsInReportingOrder(t *testing.T) {
	t.Parallel()

	s := report.NewSummary("Manifest", sampleLinks())
	rows := s.Rows()

	require.Len(t, rows, 3)
	assert.Equal(t, report.Row{DocType: domain.Greenbook, Discovered: 2}, rows[0])
	assert.Equal(t, report.Row{DocType: domain.Bluebook}, rows[1])
	assert.Equal(t, report.Row{DocType: domain.Tealbook, Discovered: 1}, rows[2])
	assert.Equal(t, 3, s.Total().Discovered)
	assert.False(t, s.Downloads)
}

func TestSummary_DownloadCounts(t *testing.T) {
	t.Parallel()

	s := report.NewSummary("Download", sampleLinks())
	s.Downloaded(domain.Greenbook)
	s.Skipped(domain.Greenbook)
	s.Failed(domain.Tealbook)

	total := s.Total()
	assert.True(t, s.Downloads)
	assert.Equal(t, 1, total.Downloaded)
	assert.Equal(t, 1, total.Skipped)
	assert.Equal(t, 1, total.Failed)
}

func TestSummary_Render(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := report.NewSummary("Saved 3 links", sampleLinks())
	s.Downloaded(domain.Greenbook)
	s.Render(&buf)

	out := buf.String()
	assert.Contains(t, out, "Saved 3 links")
	assert.Contains(t, out, "Greenbook")
	assert.Contains(t, out, "Bluebook")
	assert.Contains(t, out, "Tealbook")
	assert.Contains(t, strings.ToUpper(out), "DOWNLOADED")
	assert.Less(t, strings.Index(out, "Greenbook"), strings.Index(out, "Bluebook"))
	assert.Less(t, strings.Index(out, "Bluebook"), strings.Index(out, "Tealbook"))
}

func TestProgress_TracksAndStops(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := report.NewProgress(&buf)
	tr := p.Track("Scraping years", 3)
	tr.Increment(1)
	tr.Increment(2)
	tr.MarkAsDone()
	p.Stop()

	assert.Contains(t, buf.String(), "Scraping years")
}

func TestNoProgress(t *testing.T) {
	t.Parallel()

	tr := report.NoProgress().Track("ignored", 10)
	assert.NotPanics(t, func() {
		tr.Increment(1)
		tr.MarkAsDone()
	})
}
