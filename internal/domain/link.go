// Package domain holds the core types shared by the collector, the classifier
// and the sinks.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DocType is the policy document series a link belongs to.
type DocType string

const (
	// Greenbook is the staff forecast document series.
	Greenbook DocType = "Greenbook"
	// Bluebook is the policy alternatives document series.
	Bluebook DocType = "Bluebook"
	// Tealbook replaced the Greenbook/Bluebook pair.
	Tealbook DocType = "Tealbook"
)

// ErrUnknownDocType is returned when a string does not name a known series.
var ErrUnknownDocType = errors.New("unknown document type")

// AllDocTypes returns every document type in reporting order.
func AllDocTypes() []DocType {
	return []DocType{Greenbook, Bluebook, Tealbook}
}

// Valid reports whether d is one of the known document types.
func (d DocType) Valid() bool {
	switch d {
	case Greenbook, Bluebook, Tealbook:
		return true
	default:
		return false
	}
}

// String returns the document type name.
func (d DocType) String() string {
	return string(d)
}

// ParseDocType parses a document type name case-insensitively.
func ParseDocType(s string) (DocType, error) {
	for _, d := range AllDocTypes() {
		if strings.EqualFold(strings.TrimSpace(s), string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDocType, s)
}

// FileType is the artifact format expected for a year.
type FileType string

const (
	// FileTypePDF marks individual PDF documents.
	FileTypePDF FileType = "pdf"
	// FileTypeZIP marks the bundled archives of the archival years.
	FileTypeZIP FileType = "zip"
)

// Extension returns the file extension including the leading dot.
func (f FileType) Extension() string {
	return "." + string(f)
}

// String returns the file type name.
func (f FileType) String() string {
	return string(f)
}

// DiscoveredLink is one classified artifact reference found on a listing page.
type DiscoveredLink struct {
	SourceURL  string   `csv:"source_url"  db:"source_url"  json:"source_url"  mapstructure:"source_url"`
	DocType    DocType  `csv:"doc_type"    db:"doc_type"    json:"doc_type"    mapstructure:"doc_type"`
	FileType   FileType `csv:"file_type"   db:"file_type"   json:"file_type"   mapstructure:"file_type"`
	Year       int      `csv:"year"        db:"year"        json:"year"        mapstructure:"year"`
	LinkText   string   `csv:"link_text"   db:"link_text"   json:"link_text"   mapstructure:"link_text"`
	ContextURL string   `csv:"context_url" db:"context_url" json:"context_url" mapstructure:"context_url"`
}

// CountByDocType tallies links per document type. Every known type is present
// in the result, with zero when no link carries it.
func CountByDocType(links []DiscoveredLink) map[DocType]int {
	counts := make(map[DocType]int, len(AllDocTypes()))
	for _, d := range AllDocTypes() {
		counts[d] = 0
	}
	for i := range links {
		counts[links[i].DocType]++
	}
	return counts
}
