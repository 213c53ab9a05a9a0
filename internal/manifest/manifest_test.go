package manifest_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulbousquet/fomcscrape/internal/domain"
	"github.com/paulbousquet/fomcscrape/internal/logger"
	"github.com/paulbousquet/fomcscrape/internal/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLinks() []domain.DiscoveredLink {
	return []domain.DiscoveredLink{
		{
			SourceURL:  "https://www.federalreserve.gov/monetarypolicy/files/FOMC19900207gbpt119900131.pdf",
			DocType:    domain.Greenbook,
			FileType:   domain.FileTypePDF,
			Year:       1990,
			LinkText:   "Greenbook Part 1, \"Summary\"",
			ContextURL: "https://www.federalreserve.gov/monetarypolicy/fomchistorical1990.htm",
		},
		{
			SourceURL:  "https://www.federalreserve.gov/monetarypolicy/files/FOMC20100127gbmaterial.zip",
			DocType:    domain.Greenbook,
			FileType:   domain.FileTypeZIP,
			Year:       2010,
			LinkText:   "",
			ContextURL: "https://www.federalreserve.gov/monetarypolicy/fomchistorical2010.htm",
		},
	}
}

func TestWriter_WritesHeaderAndRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "fomc_books_manifest.csv")
	w := manifest.NewWriter(path, logger.NewNop())

	require.NoError(t, w.Write(context.Background(), sampleLinks()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "source_url,doc_type,file_type,year,link_text,context_url", lines[0])
	assert.Equal(t,
		`https://www.federalreserve.gov/monetarypolicy/files/FOMC19900207gbpt119900131.pdf,Greenbook,pdf,1990,"Greenbook Part 1, ""Summary""",https://www.federalreserve.gov/monetarypolicy/fomchistorical1990.htm`,
		lines[1])
}

func TestWriter_TruncatesExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "m.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("stale\n", 100)), 0o600))

	require.NoError(t, manifest.NewWriter(path, nil).Write(context.Background(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "source_url,doc_type,file_type,year,link_text,context_url\n", string(data))
}

func TestWriter_ErrorPropagates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	err := manifest.NewWriter(filepath.Join(blocker, "m.csv"), nil).Write(context.Background(), sampleLinks())
	require.Error(t, err)
}

func TestReadBack(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "m.csv")
	require.NoError(t, manifest.NewWriter(path, nil).Write(context.Background(), sampleLinks()))

	links, err := manifest.Read(path)
	require.NoError(t, err)
	assert.Equal(t, sampleLinks(), links)
}

func TestDecode_ColumnsByName(t *testing.T) {
	t.Parallel()

	in := "year,doc_type,source_url,file_type,context_url,link_text,notes\n" +
		"1995,bluebook,https://x/b.pdf,pdf,https://x/p.htm,Bluebook,extra\n"

	links, err := manifest.Decode(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, domain.DiscoveredLink{
		SourceURL:  "https://x/b.pdf",
		DocType:    domain.Bluebook,
		FileType:   domain.FileTypePDF,
		Year:       1995,
		LinkText:   "Bluebook",
		ContextURL: "https://x/p.htm",
	}, links[0])
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"missing column", "source_url,doc_type\nhttps://x/a.pdf,Greenbook\n"},
		{"unknown doc type", "source_url,doc_type,file_type,year,link_text,context_url\nhttps://x/a.pdf,Beigebook,pdf,1990,,\n"},
		{"unknown file type", "source_url,doc_type,file_type,year,link_text,context_url\nhttps://x/a.pdf,Greenbook,doc,1990,,\n"},
		{"bad year", "source_url,doc_type,file_type,year,link_text,context_url\nhttps://x/a.pdf,Greenbook,pdf,nineteen,,\n"},
		{"empty url", "source_url,doc_type,file_type,year,link_text,context_url\n,Greenbook,pdf,1990,,\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := manifest.Decode(strings.NewReader(tt.in))
			require.Error(t, err)
		})
	}

	_, err := manifest.Decode(strings.NewReader(""))
	require.ErrorIs(t, err, manifest.ErrInvalidHeader)
}

func TestRead_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := manifest.Read(filepath.Join(t.TempDir(), "nope.csv"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
