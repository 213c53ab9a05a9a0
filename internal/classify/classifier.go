package classify

import (
	"strings"

	"github.com/paulbousquet/fomcscrape/internal/domain"
)

// Decision is the outcome of classifying one href.
type Decision struct {
	// DocType is the first matching type, empty when nothing matched.
	DocType domain.DocType
	// FileType is the type expected for the year, set even when nothing matched.
	FileType domain.FileType
	// Matches lists every matching type in table order.
	Matches []domain.DocType
}

// Matched reports whether at least one pattern matched.
func (d Decision) Matched() bool {
	return len(d.Matches) > 0
}

// Ambiguous reports whether more than one pattern matched.
func (d Decision) Ambiguous() bool {
	return len(d.Matches) > 1
}

// Classifier applies Rules to hrefs.
type Classifier struct {
	rules Rules
}

// New creates a Classifier over rules.
func New(rules Rules) *Classifier {
	return &Classifier{rules: rules}
}

// Classify labels href found on the page for year. An href whose extension
// does not match the year's file type is rejected before any pattern runs.
func (c *Classifier) Classify(href string, year int) Decision {
	fileType := c.rules.ExpectedFileType(year)
	decision := Decision{FileType: fileType}

	lower := strings.ToLower(href)
	if !strings.HasSuffix(lower, fileType.Extension()) {
		return decision
	}

	decision.Matches = c.rules.TableFor(year).Match(lower)
	if len(decision.Matches) > 0 {
		decision.DocType = decision.Matches[0]
	}

	return decision
}
