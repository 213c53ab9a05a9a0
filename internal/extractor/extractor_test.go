package extractor_test

import (
	"net/url"
	"testing"

	"github.com/paulbousquet/fomcscrape/internal/extractor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPageURL = "https://www.federalreserve.gov/monetarypolicy/fomchistorical1990.htm"

// listingHTML mirrors the layout of a historical materials page.
const listingHTML = `<!DOCTYPE html>
<html>
<head><title>FOMC 1990</title></head>
<body>
  <div class="panel">
    <h5>February 06-07 Meeting</h5>
    <p><a href="/monetarypolicy/files/FOMC19900207gbpt119900131.pdf">Greenbook
       Part 1</a></p>
    <p><a href="files/FOMC19900207bluebook19900201.pdf#page=2">Bluebook</a></p>
    <p><a href="https://www.federalreserve.gov/monetarypolicy/files/FOMC19900207tealbooka.pdf"><em>Tealbook</em><br>A</a></p>
    <p><a name="anchor-only">No href</a></p>
    <p><a href="fomchistorical1989.htm">1989</a></p>
  </div>
</body>
</html>`

func TestExtract_ResolvesInDocumentOrder(t *testing.T) {
	t.Parallel()

	anchors, err := extractor.Extract([]byte(listingHTML), testPageURL)
	require.NoError(t, err)
	require.Len(t, anchors, 4)

	assert.Equal(t, "/monetarypolicy/files/FOMC19900207gbpt119900131.pdf", anchors[0].Href)
	assert.Equal(t, "https://www.federalreserve.gov/monetarypolicy/files/FOMC19900207gbpt119900131.pdf", anchors[0].URL)
	assert.Equal(t, "Greenbook Part 1", anchors[0].Text)

	assert.Equal(t, "https://www.federalreserve.gov/monetarypolicy/files/FOMC19900207bluebook19900201.pdf", anchors[1].URL)

	assert.Equal(t, "https://www.federalreserve.gov/monetarypolicy/files/FOMC19900207tealbooka.pdf", anchors[2].URL)
	assert.Equal(t, "Tealbook A", anchors[2].Text)

	assert.Equal(t, "https://www.federalreserve.gov/monetarypolicy/fomchistorical1989.htm", anchors[3].URL)
}

func TestExtract_MalformedMarkup(t *testing.T) {
	t.Parallel()

	body := []byte(`<p><a href="a_gbpt1.pdf">one<a href="b_bluebook.pdf">two</span></div>`)

	anchors, err := extractor.Extract(body, testPageURL)
	require.NoError(t, err)
	require.Len(t, anchors, 2)
	assert.Equal(t, "https://www.federalreserve.gov/monetarypolicy/a_gbpt1.pdf", anchors[0].URL)
	assert.Equal(t, "https://www.federalreserve.gov/monetarypolicy/b_bluebook.pdf", anchors[1].URL)
}

func TestExtract_EmptyBody(t *testing.T) {
	t.Parallel()

	anchors, err := extractor.Extract(nil, testPageURL)
	require.NoError(t, err)
	assert.Empty(t, anchors)
}

func TestExtract_UnresolvableHrefKeptWithoutURL(t *testing.T) {
	t.Parallel()

	anchors, err := extractor.Extract([]byte(`<a href="http://[::1">bad</a>`), testPageURL)
	require.NoError(t, err)
	require.Len(t, anchors, 1)
	assert.Equal(t, "http://[::1", anchors[0].Href)
	assert.Empty(t, anchors[0].URL)
}

func TestExtract_InvalidPageURL(t *testing.T) {
	t.Parallel()

	_, err := extractor.Extract([]byte(listingHTML), "fomchistorical1990.htm")
	require.ErrorIs(t, err, extractor.ErrInvalidPageURL)
}

func TestCanonicalize(t *testing.T) {
	t.Parallel()

	base, err := url.Parse(testPageURL)
	require.NoError(t, err)

	tests := []struct {
		href string
		want string
	}{
		{"files/a.pdf", "https://www.federalreserve.gov/monetarypolicy/files/a.pdf"},
		{"../a.pdf", "https://www.federalreserve.gov/a.pdf"},
		{"/a.pdf?x=1#top", "https://www.federalreserve.gov/a.pdf?x=1"},
		{"  a.pdf ", "https://www.federalreserve.gov/monetarypolicy/a.pdf"},
		{"http://example.com/B.PDF", "http://example.com/B.PDF"},
	}

	for _, tt := range tests {
		got, err := extractor.Canonicalize(base, tt.href)
		require.NoError(t, err, tt.href)
		assert.Equal(t, tt.want, got, tt.href)
	}
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Greenbook Part 1", extractor.NormalizeText("  Greenbook\n\t Part   1 "))
	assert.Empty(t, extractor.NormalizeText(" \n "))
}
