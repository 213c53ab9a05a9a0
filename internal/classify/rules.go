// Package classify decides which document series an artifact link belongs to.
package classify

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/paulbousquet/fomcscrape/internal/domain"
)

// ErrNoPatterns is returned when a pattern table would be empty.
var ErrNoPatterns = errors.New("no patterns configured")

// PatternSpec is the uncompiled form of a Pattern.
type PatternSpec struct {
	DocType string
	Pattern string
}

// Pattern pairs a document type with the filename fragment identifying it.
type Pattern struct {
	DocType domain.DocType
	Regexp  *regexp.Regexp
}

// Table is an ordered pattern list. Order decides which type wins when more
// than one pattern matches.
type Table []Pattern

// CompileTable compiles specs into a case-insensitive table.
func CompileTable(specs []PatternSpec) (Table, error) {
	table := make(Table, 0, len(specs))
	for i, spec := range specs {
		docType, err := domain.ParseDocType(spec.DocType)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i, err)
		}
		re, err := regexp.Compile("(?i)" + spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %d (%s): %w", i, docType, err)
		}
		table = append(table, Pattern{DocType: docType, Regexp: re})
	}
	return table, nil
}

// MustCompileTable is like CompileTable but panics on error.
func MustCompileTable(specs []PatternSpec) Table {
	table, err := CompileTable(specs)
	if err != nil {
		panic(err)
	}
	return table
}

// Match returns every document type whose pattern matches href, in table order.
func (t Table) Match(href string) []domain.DocType {
	var matches []domain.DocType
	for _, p := range t {
		if p.Regexp.MatchString(href) {
			matches = append(matches, p.DocType)
		}
	}
	return matches
}

// Overlaps reports the hrefs matched by more than one pattern.
func (t Table) Overlaps(hrefs []string) map[string][]domain.DocType {
	overlaps := make(map[string][]domain.DocType)
	for _, href := range hrefs {
		if matches := t.Match(href); len(matches) > 1 {
			overlaps[href] = matches
		}
	}
	return overlaps
}

// Rules holds the year buckets and their pattern tables.
type Rules struct {
	// ArchiveYears publish ZIP bundles matched against Archive.
	ArchiveYears domain.YearRange
	// Standard applies to every year outside ArchiveYears.
	Standard Table
	// Archive applies inside ArchiveYears.
	Archive Table
}

// Published archive span.
const (
	DefaultArchiveStart = 2008
	DefaultArchiveEnd   = 2012
)

// DefaultStandardPatterns are the filename fragments of the PDF years.
func DefaultStandardPatterns() []PatternSpec {
	return []PatternSpec{
		{DocType: string(domain.Greenbook), Pattern: `gbpt[12]`},
		{DocType: string(domain.Bluebook), Pattern: `bluebook`},
		{DocType: string(domain.Tealbook), Pattern: `tealbook[ab]`},
	}
}

// DefaultArchivePatterns are the bundle names of the archive years. The
// Bluebook series has no bundle of its own in that span.
func DefaultArchivePatterns() []PatternSpec {
	return []PatternSpec{
		{DocType: string(domain.Greenbook), Pattern: `gbmaterial`},
		{DocType: string(domain.Tealbook), Pattern: `tealbookmaterial`},
	}
}

// DefaultRules returns the rules of the published historical pages.
func DefaultRules() Rules {
	return Rules{
		ArchiveYears: domain.YearRange{Start: DefaultArchiveStart, End: DefaultArchiveEnd},
		Standard:     MustCompileTable(DefaultStandardPatterns()),
		Archive:      MustCompileTable(DefaultArchivePatterns()),
	}
}

// NewRules compiles both tables.
func NewRules(archiveYears domain.YearRange, standard, archive []PatternSpec) (Rules, error) {
	if len(standard) == 0 {
		return Rules{}, fmt.Errorf("standard table: %w", ErrNoPatterns)
	}
	if err := archiveYears.Validate(); err != nil {
		return Rules{}, fmt.Errorf("archive years: %w", err)
	}
	std, err := CompileTable(standard)
	if err != nil {
		return Rules{}, fmt.Errorf("standard table: %w", err)
	}
	arc, err := CompileTable(archive)
	if err != nil {
		return Rules{}, fmt.Errorf("archive table: %w", err)
	}
	return Rules{ArchiveYears: archiveYears, Standard: std, Archive: arc}, nil
}

// IsArchiveYear reports whether year falls in the archive span.
func (r Rules) IsArchiveYear(year int) bool {
	return r.ArchiveYears.Contains(year)
}

// ExpectedFileType returns the artifact type published for year.
func (r Rules) ExpectedFileType(year int) domain.FileType {
	if r.IsArchiveYear(year) {
		return domain.FileTypeZIP
	}
	return domain.FileTypePDF
}

// TableFor returns the pattern table applied to year.
func (r Rules) TableFor(year int) Table {
	if r.IsArchiveYear(year) {
		return r.Archive
	}
	return r.Standard
}
