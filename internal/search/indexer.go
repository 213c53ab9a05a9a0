// Package search indexes discovered links into Elasticsearch so the manifest
// can be queried alongside other crawl data.
package search

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/paulbousquet/fomcscrape/internal/domain"
	"github.com/paulbousquet/fomcscrape/internal/logger"
)

// Constants for timeout durations
const (
	DefaultIndexTimeout = 10 * time.Second
	DefaultBulkTimeout  = 30 * time.Second
)

// DefaultIndex is the index used when none is configured.
const DefaultIndex = "fomc_documents"

// ErrBulkFailed is returned when Elasticsearch rejects one or more documents.
var ErrBulkFailed = errors.New("bulk index failed")

// Config holds Elasticsearch connection settings.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	APIKey    string
}

// NewClient creates an Elasticsearch client over transport.
func NewClient(cfg Config, transport http.RoundTripper) (*es.Client, error) {
	clientConfig := es.Config{
		Addresses: cfg.Addresses,
		Transport: transport,
	}

	if cfg.APIKey != "" {
		clientConfig.APIKey = cfg.APIKey
	} else if cfg.Username != "" && cfg.Password != "" {
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	client, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	return client, nil
}

// Document is the indexed form of a discovered link.
type Document struct {
	domain.DiscoveredLink
	IndexedAt time.Time `json:"indexed_at"`
}

// DocumentID derives a stable document ID from a source URL, so re-indexing
// a link overwrites its previous document.
func DocumentID(sourceURL string) string {
	sum := sha256.Sum256([]byte(sourceURL))
	return hex.EncodeToString(sum[:])
}

var indexMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"source_url":  map[string]any{"type": "keyword"},
			"doc_type":    map[string]any{"type": "keyword"},
			"file_type":   map[string]any{"type": "keyword"},
			"year":        map[string]any{"type": "integer"},
			"link_text":   map[string]any{"type": "text"},
			"context_url": map[string]any{"type": "keyword"},
			"indexed_at":  map[string]any{"type": "date"},
		},
	},
}

// Indexer writes discovered links to an Elasticsearch index.
type Indexer struct {
	client *es.Client
	index  string
	log    logger.Logger
	now    func() time.Time
}

// NewIndexer creates an Indexer for index, falling back to DefaultIndex.
func NewIndexer(client *es.Client, index string, log logger.Logger) *Indexer {
	if index == "" {
		index = DefaultIndex
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Indexer{client: client, index: index, log: log, now: time.Now}
}

// Index returns the target index name.
func (i *Indexer) Index() string {
	return i.index
}

// EnsureIndex creates the index with its mapping if it does not exist.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultIndexTimeout)
	defer cancel()

	res, err := i.client.Indices.Exists([]string{i.index}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	switch res.StatusCode {
	case http.StatusOK:
		closeResponse(res)
		return nil
	case http.StatusNotFound:
		closeResponse(res)
	default:
		defer closeResponse(res)
		return fmt.Errorf("failed to check index existence: %s", res.String())
	}

	var buf bytes.Buffer
	if encodeErr := json.NewEncoder(&buf).Encode(indexMapping); encodeErr != nil {
		return fmt.Errorf("error encoding mapping: %w", encodeErr)
	}

	res, err = i.client.Indices.Create(
		i.index,
		i.client.Indices.Create.WithContext(ctx),
		i.client.Indices.Create.WithBody(&buf),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer closeResponse(res)

	if res.IsError() {
		return fmt.Errorf("failed to create index: %s", res.String())
	}

	i.log.Info("Created index", logger.String("index", i.index))
	return nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

// Write indexes links in one bulk request; it satisfies the collector sink
// interface.
func (i *Indexer) Write(ctx context.Context, links []domain.DiscoveredLink) error {
	if len(links) == 0 {
		return nil
	}
	if err := i.EnsureIndex(ctx); err != nil {
		return err
	}

	body, err := i.bulkBody(links)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultBulkTimeout)
	defer cancel()

	res, err := i.client.Bulk(
		bytes.NewReader(body),
		i.client.Bulk.WithContext(ctx),
		i.client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("failed to bulk index: %w", err)
	}
	defer closeResponse(res)

	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrBulkFailed, res.String())
	}

	var parsed bulkResponse
	if decodeErr := json.NewDecoder(res.Body).Decode(&parsed); decodeErr != nil {
		return fmt.Errorf("error decoding bulk response: %w", decodeErr)
	}

	if parsed.Errors {
		failed := 0
		for _, item := range parsed.Items {
			for _, result := range item {
				if result.Error == nil {
					continue
				}
				failed++
				i.log.Warn("Document rejected",
					logger.String("id", result.ID),
					logger.String("type", result.Error.Type),
					logger.String("reason", result.Error.Reason),
				)
			}
		}
		return fmt.Errorf("%w: %d of %d documents rejected", ErrBulkFailed, failed, len(links))
	}

	i.log.Info("Indexed links",
		logger.String("index", i.index),
		logger.Int("links", len(links)),
	)
	return nil
}

func (i *Indexer) bulkBody(links []domain.DiscoveredLink) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	indexedAt := i.now().UTC()

	for idx := range links {
		meta := map[string]any{
			"index": map[string]any{"_index": i.index, "_id": DocumentID(links[idx].SourceURL)},
		}
		if err := enc.Encode(meta); err != nil {
			return nil, fmt.Errorf("error encoding bulk metadata: %w", err)
		}
		if err := enc.Encode(Document{DiscoveredLink: links[idx], IndexedAt: indexedAt}); err != nil {
			return nil, fmt.Errorf("error encoding document: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func closeResponse(res *esapi.Response) {
	if res != nil && res.Body != nil {
		_ = res.Body.Close()
	}
}
