package collector_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/paulbousquet/fomcscrape/internal/classify"
	"github.com/paulbousquet/fomcscrape/internal/collector"
	"github.com/paulbousquet/fomcscrape/internal/domain"
	"github.com/paulbousquet/fomcscrape/internal/fetcher"
	"github.com/paulbousquet/fomcscrape/internal/httpclient"
	"github.com/paulbousquet/fomcscrape/internal/logger"
	"github.com/paulbousquet/fomcscrape/internal/metrics"
	loggerMock "github.com/paulbousquet/fomcscrape/testutils/mocks/logger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testTemplate = "https://www.federalreserve.gov/monetarypolicy/fomchistorical{year}.htm"

// stubFetcher serves canned pages keyed by URL; unknown URLs fail with 404.
type stubFetcher struct {
	pages    map[string]string
	requests []string
}

func (s *stubFetcher) Fetch(_ context.Context, pageURL string) fetcher.Result {
	s.requests = append(s.requests, pageURL)
	body, ok := s.pages[pageURL]
	if !ok {
		return fetcher.Result{
			URL:        pageURL,
			StatusCode: http.StatusNotFound,
			Err: &fetcher.FetchError{
				URL:        pageURL,
				Reason:     fetcher.ReasonHTTPStatus,
				StatusCode: http.StatusNotFound,
			},
		}
	}
	return fetcher.Result{URL: pageURL, StatusCode: http.StatusOK, Body: []byte(body)}
}

func pageURL(year int) string {
	return fetcher.PageURL(testTemplate, year)
}

func anchors(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, h := range hrefs {
		fmt.Fprintf(&b, `<p><a href="%s">%s</a></p>`, h, h)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func newCollector(t *testing.T, f fetcher.Fetcher, years domain.YearRange, opts ...collector.Option) *collector.Collector {
	t.Helper()

	c, err := collector.New(collector.Config{
		PageURLTemplate: testTemplate,
		Years:           years,
	}, f, classify.New(classify.DefaultRules()), logger.NewNop(), opts...)
	require.NoError(t, err)

	return c
}

func TestCollect_SyntheticPage1990(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/monetarypolicy/fomchistorical1990.htm" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(anchors("foo_gbpt1.pdf", "bar_bluebook.pdf", "baz_tealbooka.pdf", "irrelevant.htm", "chart.pdf")))
	}))
	defer srv.Close()

	pages := fetcher.New(fetcher.Config{UserAgent: "FOMC-Collector/1.0", Timeout: time.Second},
		httpclient.NewTransport(httpclient.TransportConfig{}), logger.NewNop())

	c, err := collector.New(collector.Config{
		PageURLTemplate: srv.URL + "/monetarypolicy/fomchistorical{year}.htm",
		Years:           domain.YearRange{Start: 1990, End: 1990},
	}, pages, classify.New(classify.DefaultRules()), logger.NewNop())
	require.NoError(t, err)

	res, err := c.Collect(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Links, 3)

	listing := srv.URL + "/monetarypolicy/fomchistorical1990.htm"
	want := []domain.DiscoveredLink{
		{SourceURL: srv.URL + "/monetarypolicy/foo_gbpt1.pdf", DocType: domain.Greenbook, FileType: domain.FileTypePDF, Year: 1990, LinkText: "foo_gbpt1.pdf", ContextURL: listing},
		{SourceURL: srv.URL + "/monetarypolicy/bar_bluebook.pdf", DocType: domain.Bluebook, FileType: domain.FileTypePDF, Year: 1990, LinkText: "bar_bluebook.pdf", ContextURL: listing},
		{SourceURL: srv.URL + "/monetarypolicy/baz_tealbooka.pdf", DocType: domain.Tealbook, FileType: domain.FileTypePDF, Year: 1990, LinkText: "baz_tealbooka.pdf", ContextURL: listing},
	}
	assert.Equal(t, want, res.Links)
	assert.Equal(t, 1, res.PagesFetched)
}

func TestCollect_FailedYearDoesNotAbort(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{pages: map[string]string{
		pageURL(1990): anchors("a_gbpt1.pdf"),
		pageURL(1992): anchors("b_bluebook.pdf"),
	}}
	m := metrics.New()
	c := newCollector(t, f, domain.YearRange{Start: 1990, End: 1992}, collector.WithMetrics(m))

	res, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{pageURL(1990), pageURL(1991), pageURL(1992)}, f.requests)
	require.Len(t, res.Links, 2)
	assert.Equal(t, 1990, res.Links[0].Year)
	assert.Equal(t, 1992, res.Links[1].Year)
	assert.Equal(t, 2, res.PagesFetched)
	assert.Equal(t, 1, res.PagesFailed)

	assert.InDelta(t, 2, testutil.ToFloat64(m.PagesFetchedTotal.WithLabelValues("ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.PagesFetchedTotal.WithLabelValues("http_status")), 0)
}

func TestCollect_LogsFetchFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockLog := loggerMock.NewMockLogger(ctrl)
	mockLog.EXPECT().With(gomock.Any()).Return(mockLog).AnyTimes()
	mockLog.EXPECT().Warn("Failed to fetch page", gomock.Any()).Times(1)
	mockLog.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()

	c, err := collector.New(collector.Config{
		PageURLTemplate: testTemplate,
		Years:           domain.YearRange{Start: 1850, End: 1850},
	}, &stubFetcher{}, classify.New(classify.DefaultRules()), mockLog)
	require.NoError(t, err)

	res, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Links)
}

func TestCollect_DuplicatesAcrossYearsKeepFirst(t *testing.T) {
	t.Parallel()

	shared := "https://www.federalreserve.gov/monetarypolicy/files/shared_bluebook.pdf"
	f := &stubFetcher{pages: map[string]string{
		pageURL(1990): anchors(shared, "x_gbpt2.pdf"),
		pageURL(1991): anchors(shared),
	}}
	c := newCollector(t, f, domain.YearRange{Start: 1990, End: 1991})

	res, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Discovered)
	require.Len(t, res.Links, 2)
	assert.Equal(t, shared, res.Links[0].SourceURL)
	assert.Equal(t, 1990, res.Links[0].Year)
}

func TestCollect_ArchiveYears(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{pages: map[string]string{
		pageURL(2010): anchors("files/gbmaterial2010.zip", "files/bluebookmaterial2010.zip", "files/FOMC20100127tealbooka.pdf"),
	}}
	c := newCollector(t, f, domain.YearRange{Start: 2010, End: 2010})

	res, err := c.Collect(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Links, 1)
	assert.Equal(t, domain.Greenbook, res.Links[0].DocType)
	assert.Equal(t, domain.FileTypeZIP, res.Links[0].FileType)
}

func TestCollect_AmbiguousLinks(t *testing.T) {
	t.Parallel()

	page := anchors("files/bluebook_gbpt1.pdf", "files/plain_bluebook.pdf")

	t.Run("kept by default", func(t *testing.T) {
		t.Parallel()

		f := &stubFetcher{pages: map[string]string{pageURL(1990): page}}
		m := metrics.New()
		c := newCollector(t, f, domain.YearRange{Start: 1990, End: 1990}, collector.WithMetrics(m))

		res, err := c.Collect(context.Background())
		require.NoError(t, err)
		require.Len(t, res.Links, 2)
		assert.Equal(t, domain.Greenbook, res.Links[0].DocType)
		assert.Equal(t, 1, res.Ambiguous)
		assert.InDelta(t, 1, testutil.ToFloat64(m.AmbiguousLinksTotal), 0)
	})

	t.Run("dropped when strict", func(t *testing.T) {
		t.Parallel()

		f := &stubFetcher{pages: map[string]string{pageURL(1990): page}}
		c, err := collector.New(collector.Config{
			PageURLTemplate: testTemplate,
			Years:           domain.YearRange{Start: 1990, End: 1990},
			Strict:          true,
		}, f, classify.New(classify.DefaultRules()), logger.NewNop())
		require.NoError(t, err)

		res, err := c.Collect(context.Background())
		require.NoError(t, err)
		require.Len(t, res.Links, 1)
		assert.Equal(t, domain.Bluebook, res.Links[0].DocType)
		assert.Equal(t, 1, res.Ambiguous)
	})
}

func TestCollect_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &stubFetcher{}
	c := newCollector(t, f, domain.YearRange{Start: 1990, End: 1995})

	_, err := c.Collect(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.requests)
}

func TestNew_ValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := collector.New(collector.Config{
		PageURLTemplate: "https://example.com/page.htm",
		Years:           domain.YearRange{Start: 1990, End: 1990},
	}, &stubFetcher{}, classify.New(classify.DefaultRules()), nil)
	require.ErrorIs(t, err, collector.ErrMissingTemplate)

	_, err = collector.New(collector.Config{
		PageURLTemplate: testTemplate,
		Years:           domain.YearRange{Start: 1991, End: 1990},
	}, &stubFetcher{}, classify.New(classify.DefaultRules()), nil)
	require.ErrorIs(t, err, domain.ErrInvalidYearRange)
}

func TestClassifyPage_UnresolvableLinkSkipped(t *testing.T) {
	t.Parallel()

	c := newCollector(t, &stubFetcher{}, domain.YearRange{Start: 1990, End: 1990})

	links, _, err := c.ClassifyPage([]byte(anchors("http://[::1/x_gbpt1.pdf", "ok_gbpt1.pdf")), pageURL(1990), 1990)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "https://www.federalreserve.gov/monetarypolicy/ok_gbpt1.pdf", links[0].SourceURL)
}

func TestClassifyPage_GateUsesHrefAsWritten(t *testing.T) {
	t.Parallel()

	c := newCollector(t, &stubFetcher{}, domain.YearRange{Start: 1990, End: 1990})

	links, _, err := c.ClassifyPage([]byte(anchors("x_gbpt1.pdf#page=2", "y_gbpt2.pdf")), pageURL(1990), 1990)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "https://www.federalreserve.gov/monetarypolicy/y_gbpt2.pdf", links[0].SourceURL)
}

func TestMultiSink_WritesAllAndJoinsErrors(t *testing.T) {
	t.Parallel()

	var calls []string
	boom := errors.New("disk full")
	sinks := collector.MultiSink{
		{Name: "csv", Sink: collector.SinkFunc(func(context.Context, []domain.DiscoveredLink) error {
			calls = append(calls, "csv")
			return boom
		})},
		{Name: "database", Sink: collector.SinkFunc(func(context.Context, []domain.DiscoveredLink) error {
			calls = append(calls, "database")
			return nil
		})},
	}

	err := sinks.Write(context.Background(), nil)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "csv sink")
	assert.Equal(t, []string{"csv", "database"}, calls)
}
