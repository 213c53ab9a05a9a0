// Package manifest reads and writes the CSV manifest of discovered links.
package manifest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/paulbousquet/fomcscrape/internal/domain"
	"github.com/paulbousquet/fomcscrape/internal/logger"
)

// Header is the fixed column order of a manifest.
var Header = []string{"source_url", "doc_type", "file_type", "year", "link_text", "context_url"}

// ErrInvalidHeader is returned when a manifest does not start with Header.
var ErrInvalidHeader = errors.New("invalid manifest header")

// Writer writes manifests to a file path.
type Writer struct {
	path string
	log  logger.Logger
}

// NewWriter creates a Writer for path.
func NewWriter(path string, log logger.Logger) *Writer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Writer{path: path, log: log}
}

// Write creates or truncates the manifest and writes one row per link.
func (w *Writer) Write(_ context.Context, links []domain.DiscoveredLink) error {
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create manifest directory: %w", err)
		}
	}

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}

	if err = Encode(f, links); err != nil {
		_ = f.Close()
		return fmt.Errorf("write manifest %s: %w", w.path, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close manifest %s: %w", w.path, err)
	}

	w.log.Info("Saved manifest", logger.String("path", w.path), logger.Int("links", len(links)))
	return nil
}

// Encode writes the header and one row per link.
func Encode(out io.Writer, links []domain.DiscoveredLink) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for i := range links {
		l := &links[i]
		record := []string{
			l.SourceURL,
			l.DocType.String(),
			l.FileType.String(),
			strconv.Itoa(l.Year),
			l.LinkText,
			l.ContextURL,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read parses the manifest at path.
func Read(path string) ([]domain.DiscoveredLink, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	links, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return links, nil
}

// Decode parses a manifest. Columns are matched by header name, so extra
// columns are ignored; every Header column must be present.
func Decode(in io.Reader) ([]domain.DiscoveredLink, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidHeader)
	}
	if err != nil {
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	for _, name := range Header {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrInvalidHeader, name)
		}
	}

	var links []domain.DiscoveredLink
	for line := 2; ; line++ {
		record, readErr := cr.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, readErr
		}

		row := make(map[string]any, len(Header))
		for _, name := range Header {
			if idx := columns[name]; idx < len(record) {
				row[name] = record[idx]
			}
		}

		link, decodeErr := decodeRow(row)
		if decodeErr != nil {
			return nil, fmt.Errorf("line %d: %w", line, decodeErr)
		}
		links = append(links, link)
	}

	return links, nil
}

func decodeRow(row map[string]any) (domain.DiscoveredLink, error) {
	var link domain.DiscoveredLink
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &link,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			docTypeHook,
			fileTypeHook,
		),
	})
	if err != nil {
		return domain.DiscoveredLink{}, fmt.Errorf("create decoder: %w", err)
	}
	if err = decoder.Decode(row); err != nil {
		return domain.DiscoveredLink{}, err
	}
	if link.SourceURL == "" {
		return domain.DiscoveredLink{}, errors.New("source_url is empty")
	}
	return link, nil
}

func docTypeHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(domain.DocType("")) {
		return data, nil
	}
	s, _ := data.(string)
	return domain.ParseDocType(s)
}

func fileTypeHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(domain.FileType("")) {
		return data, nil
	}
	s, _ := data.(string)
	switch ft := domain.FileType(s); ft {
	case domain.FileTypePDF, domain.FileTypeZIP:
		return ft, nil
	default:
		return nil, fmt.Errorf("unknown file type %q", s)
	}
}
