package classify_test

import (
	"testing"

	"github.com/paulbousquet/fomcscrape/internal/classify"
	"github.com/paulbousquet/fomcscrape/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_StandardYears(t *testing.T) {
	t.Parallel()

	c := classify.New(classify.DefaultRules())

	tests := []struct {
		name string
		href string
		want domain.DocType
	}{
		{"greenbook part 1", "files/FOMC19900207gbpt119900131.pdf", domain.Greenbook},
		{"greenbook part 2", "files/FOMC19900207gbpt219900131.pdf", domain.Greenbook},
		{"bluebook", "files/FOMC19900207bluebook19900201.pdf", domain.Bluebook},
		{"tealbook a", "files/FOMC20100127tealbooka20100120.pdf", domain.Tealbook},
		{"tealbook b", "files/FOMC20100127tealbookb20100121.pdf", domain.Tealbook},
		{"upper case", "FILES/FOMC19900207GBPT1.PDF", domain.Greenbook},
		{"greenbook part 3 is not a pattern", "files/gbpt3.pdf", ""},
		{"tealbook c is not a pattern", "files/tealbookc.pdf", ""},
		{"unmatched pdf", "files/chart.pdf", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := c.Classify(tt.href, 1990)
			assert.Equal(t, tt.want, d.DocType)
			assert.Equal(t, tt.want != "", d.Matched())
			assert.Equal(t, domain.FileTypePDF, d.FileType)
		})
	}
}

func TestClassify_ExtensionGate(t *testing.T) {
	t.Parallel()

	c := classify.New(classify.DefaultRules())

	rejected := []struct {
		href string
		year int
	}{
		{"foo_gbpt1.htm", 1990},
		{"foo_gbpt1.pdf.html", 1990},
		{"foo_gbpt1.pdf?download=1", 1990},
		{"foo_gbpt1.pdf#page=2", 1990},
		{"foo_gbpt1.zip", 1990},
		{"gbmaterial2010.pdf", 2010},
		{"tealbooka.pdf", 2010},
	}
	for _, tt := range rejected {
		d := c.Classify(tt.href, tt.year)
		assert.False(t, d.Matched(), tt.href)
		assert.Empty(t, d.Matches, tt.href)
	}

	assert.True(t, c.Classify("FOO_GBPT1.PdF", 1990).Matched())
	assert.True(t, c.Classify("GBMATERIAL2010.ZIP", 2010).Matched())
}

func TestClassify_ArchiveYears(t *testing.T) {
	t.Parallel()

	c := classify.New(classify.DefaultRules())

	gb := c.Classify("gbmaterial2010.zip", 2010)
	assert.Equal(t, domain.Greenbook, gb.DocType)
	assert.Equal(t, domain.FileTypeZIP, gb.FileType)

	tb := c.Classify("files/FOMC20120125tealbookmaterial.zip", 2012)
	assert.Equal(t, domain.Tealbook, tb.DocType)

	bb := c.Classify("bluebookmaterial2010.zip", 2010)
	assert.False(t, bb.Matched())
	assert.Empty(t, bb.DocType)

	// Standard patterns do not apply inside the archive span.
	assert.False(t, c.Classify("foo_gbpt1.zip", 2008).Matched())
}

func TestRules_YearBuckets(t *testing.T) {
	t.Parallel()

	rules := classify.DefaultRules()

	for year := 1983; year <= 2019; year++ {
		archive := year >= 2008 && year <= 2012
		if archive {
			assert.Equal(t, domain.FileTypeZIP, rules.ExpectedFileType(year), year)
			assert.Equal(t, rules.Archive, rules.TableFor(year), year)
		} else {
			assert.Equal(t, domain.FileTypePDF, rules.ExpectedFileType(year), year)
			assert.Equal(t, rules.Standard, rules.TableFor(year), year)
		}
	}
}

func TestClassify_AmbiguousMatchIsReported(t *testing.T) {
	t.Parallel()

	c := classify.New(classify.DefaultRules())

	d := c.Classify("files/bluebook_gbpt1.pdf", 1990)
	require.True(t, d.Ambiguous())
	assert.Equal(t, []domain.DocType{domain.Greenbook, domain.Bluebook}, d.Matches)
	assert.Equal(t, domain.Greenbook, d.DocType)

	assert.False(t, c.Classify("files/bluebook.pdf", 1990).Ambiguous())
}

func TestTable_Overlaps(t *testing.T) {
	t.Parallel()

	table := classify.DefaultRules().Standard

	overlaps := table.Overlaps([]string{
		"foo_gbpt1.pdf",
		"bar_bluebook.pdf",
		"baz_tealbooka.pdf",
		"tealbooka_bluebook.pdf",
	})

	require.Len(t, overlaps, 1)
	assert.Equal(t, []domain.DocType{domain.Bluebook, domain.Tealbook}, overlaps["tealbooka_bluebook.pdf"])
}

func TestNewRules(t *testing.T) {
	t.Parallel()

	archive := domain.YearRange{Start: 2008, End: 2012}

	_, err := classify.NewRules(archive, nil, classify.DefaultArchivePatterns())
	require.ErrorIs(t, err, classify.ErrNoPatterns)

	_, err = classify.NewRules(archive, []classify.PatternSpec{{DocType: "Beigebook", Pattern: "beige"}}, nil)
	require.ErrorIs(t, err, domain.ErrUnknownDocType)

	_, err = classify.NewRules(archive, []classify.PatternSpec{{DocType: "Greenbook", Pattern: "gb("}}, nil)
	require.Error(t, err)

	_, err = classify.NewRules(domain.YearRange{Start: 2012, End: 2008}, classify.DefaultStandardPatterns(), nil)
	require.ErrorIs(t, err, domain.ErrInvalidYearRange)

	rules, err := classify.NewRules(domain.YearRange{Start: 2000, End: 2001}, classify.DefaultStandardPatterns(), []classify.PatternSpec{
		{DocType: "bluebook", Pattern: "bbmaterial"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Bluebook, classify.New(rules).Classify("BBMATERIAL2000.zip", 2000).DocType)
}
