package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/paulbousquet/fomcscrape/internal/domain"
	"github.com/paulbousquet/fomcscrape/internal/logger"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS discovered_links (
		source_url    TEXT PRIMARY KEY,
		doc_type      TEXT NOT NULL,
		file_type     TEXT NOT NULL,
		year          INTEGER NOT NULL,
		link_text     TEXT NOT NULL DEFAULT '',
		context_url   TEXT NOT NULL,
		first_seen_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_discovered_links_year ON discovered_links (year, source_url)`,
	`CREATE INDEX IF NOT EXISTS idx_discovered_links_doc_type ON discovered_links (doc_type)`,
}

const insertLinkQuery = `
	INSERT INTO discovered_links (source_url, doc_type, file_type, year, link_text, context_url)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (source_url) DO NOTHING`

const listLinksQuery = `
	SELECT source_url, doc_type, file_type, year, link_text, context_url
	FROM discovered_links
	ORDER BY year, source_url`

const countByDocTypeQuery = `
	SELECT doc_type, COUNT(*) AS total
	FROM discovered_links
	GROUP BY doc_type`

// Repository handles database operations for discovered links.
type Repository struct {
	db  *sqlx.DB
	log logger.Logger
}

// NewRepository creates a new discovered link repository.
func NewRepository(db *sqlx.DB, log logger.Logger) *Repository {
	if log == nil {
		log = logger.NewNop()
	}
	return &Repository{db: db, log: log}
}

// Migrate creates the schema if it does not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// Save inserts links that are not stored yet and returns how many were new.
// A link already present keeps its original row.
func (r *Repository) Save(ctx context.Context, links []domain.DiscoveredLink) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := tx.Rebind(insertLinkQuery)
	inserted := 0
	for i := range links {
		l := &links[i]
		res, execErr := tx.ExecContext(ctx, query,
			l.SourceURL, l.DocType.String(), l.FileType.String(), l.Year, l.LinkText, l.ContextURL)
		if execErr != nil {
			return 0, fmt.Errorf("failed to insert %s: %w", l.SourceURL, execErr)
		}
		n, rowsErr := res.RowsAffected()
		if rowsErr != nil {
			return 0, fmt.Errorf("failed to read rows affected: %w", rowsErr)
		}
		inserted += int(n)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return inserted, nil
}

// Write stores links; it satisfies the collector sink interface.
func (r *Repository) Write(ctx context.Context, links []domain.DiscoveredLink) error {
	inserted, err := r.Save(ctx, links)
	if err != nil {
		return err
	}
	r.log.Info("Saved links to database",
		logger.Int("links", len(links)),
		logger.Int("inserted", inserted),
		logger.Int("existing", len(links)-inserted),
	)
	return nil
}

// List returns every stored link ordered by year then URL.
func (r *Repository) List(ctx context.Context) ([]domain.DiscoveredLink, error) {
	var links []domain.DiscoveredLink
	if err := r.db.SelectContext(ctx, &links, listLinksQuery); err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}

// CountByDocType returns the stored link count per document type. Every
// known type is present, with zero when none is stored.
func (r *Repository) CountByDocType(ctx context.Context) (map[domain.DocType]int, error) {
	var rows []struct {
		DocType domain.DocType `db:"doc_type"`
		Total   int            `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, countByDocTypeQuery); err != nil {
		return nil, fmt.Errorf("failed to count links: %w", err)
	}

	counts := domain.CountByDocType(nil)
	for _, row := range rows {
		counts[row.DocType] = row.Total
	}
	return counts, nil
}
