// Package report renders run summaries and progress bars.
package report

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/paulbousquet/fomcscrape/internal/domain"
)

// Row is one document type line of a summary.
type Row struct {
	DocType    domain.DocType
	Discovered int
	Downloaded int
	Skipped    int
	Failed     int
}

// Summary tallies a run per document type, in reporting order.
type Summary struct {
	Title     string
	Downloads bool
	rows      map[domain.DocType]*Row
}

// NewSummary counts the discovered links per document type.
func NewSummary(title string, links []domain.DiscoveredLink) *Summary {
	s := &Summary{Title: title, rows: make(map[domain.DocType]*Row)}
	for docType, n := range domain.CountByDocType(links) {
		s.row(docType).Discovered = n
	}
	return s
}

func (s *Summary) row(docType domain.DocType) *Row {
	r, ok := s.rows[docType]
	if !ok {
		r = &Row{DocType: docType}
		s.rows[docType] = r
	}
	return r
}

// Downloaded counts a file written to disk.
func (s *Summary) Downloaded(docType domain.DocType) {
	s.Downloads = true
	s.row(docType).Downloaded++
}

// Skipped counts a file already present.
func (s *Summary) Skipped(docType domain.DocType) {
	s.Downloads = true
	s.row(docType).Skipped++
}

// Failed counts a file that could not be fetched or written.
func (s *Summary) Failed(docType domain.DocType) {
	s.Downloads = true
	s.row(docType).Failed++
}

// Rows returns the known document types first, in reporting order, followed
// by any other type seen.
func (s *Summary) Rows() []Row {
	rows := make([]Row, 0, len(s.rows))
	for _, d := range domain.AllDocTypes() {
		rows = append(rows, *s.row(d))
	}
	for d, r := range s.rows {
		if !d.Valid() {
			rows = append(rows, *r)
		}
	}
	return rows
}

// Total sums every row.
func (s *Summary) Total() Row {
	var total Row
	for _, r := range s.rows {
		total.Discovered += r.Discovered
		total.Downloaded += r.Downloaded
		total.Skipped += r.Skipped
		total.Failed += r.Failed
	}
	return total
}

// Render writes the summary as a table.
func (s *Summary) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	if s.Title != "" {
		t.SetTitle("%s", s.Title)
	}

	header := table.Row{"Document Type", "Discovered"}
	if s.Downloads {
		header = append(header, "Downloaded", "Skipped", "Failed")
	}
	t.AppendHeader(header)

	for _, r := range s.Rows() {
		t.AppendRow(s.cells(r.DocType.String(), r))
	}
	t.AppendFooter(s.cells("Total", s.Total()))

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	t.Render()
}

func (s *Summary) cells(label string, r Row) table.Row {
	row := table.Row{label, r.Discovered}
	if s.Downloads {
		row = append(row, r.Downloaded, r.Skipped, r.Failed)
	}
	return row
}
