package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/paulbousquet/fomcscrape/internal/domain"
	"github.com/robfig/cron/v3"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Run modes accepted by the schedule command.
const (
	ModeManifest = "manifest"
	ModeDownload = "download"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %w", ErrInvalidConfig, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateApp,
		c.validateLogger,
		c.validateScrape,
		c.validateClassify,
		c.validateManifest,
		c.validateDownload,
		c.validateSchedule,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateApp() error {
	switch c.App.Environment {
	case "", EnvDevelopment, EnvProduction, EnvTest:
		return nil
	default:
		return invalid("app.environment", "must be one of: development, production, test")
	}
}

func (c *Config) validateLogger() error {
	switch strings.ToLower(c.Logger.Level) {
	case "", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return invalid("logger.level", "must be one of: debug, info, warn, error, fatal")
	}
	switch c.Logger.Encoding {
	case "", "json", "console":
	default:
		return invalid("logger.encoding", "must be one of: json, console")
	}
	return nil
}

func (c *Config) validateScrape() error {
	if !strings.Contains(c.Scrape.PageURLTemplate, "{year}") {
		return invalid("scrape.page_url_template", "must contain a {year} placeholder")
	}
	if c.Scrape.PageTimeout <= 0 {
		return invalid("scrape.page_timeout", "must be positive")
	}
	if c.Scrape.UserAgent == "" {
		return invalid("scrape.user_agent", "is required")
	}
	return nil
}

func (c *Config) validateClassify() error {
	if err := c.Classify.ArchiveYears.Validate(); err != nil {
		return invalid("classify.archive_years", "%v", err)
	}
	if len(c.Classify.StandardPatterns) == 0 {
		return invalid("classify.standard_patterns", "at least one pattern is required")
	}
	tables := map[string][]PatternConfig{
		"classify.standard_patterns": c.Classify.StandardPatterns,
		"classify.archive_patterns":  c.Classify.ArchivePatterns,
	}
	for field, patterns := range tables {
		for i, p := range patterns {
			if _, err := domain.ParseDocType(p.DocType); err != nil {
				return invalid(fmt.Sprintf("%s[%d].doc_type", field, i), "%v", err)
			}
			if _, err := regexp.Compile(p.Pattern); err != nil {
				return invalid(fmt.Sprintf("%s[%d].pattern", field, i), "%v", err)
			}
		}
	}
	return nil
}

func (c *Config) validateManifest() error {
	if err := c.Manifest.Years.Validate(); err != nil {
		return invalid("manifest.years", "%v", err)
	}
	for _, sink := range c.Manifest.Sinks {
		switch sink {
		case SinkCSV:
			if c.Manifest.Path == "" {
				return invalid("manifest.path", "is required for the csv sink")
			}
		case SinkDatabase:
			if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
				return invalid("database.driver", "must be postgres or sqlite")
			}
			if c.Database.DSN == "" {
				return invalid("database.dsn", "is required for the database sink")
			}
		case SinkElasticsearch:
			if len(c.Elasticsearch.Addresses) == 0 {
				return invalid("elasticsearch.addresses", "is required for the elasticsearch sink")
			}
			if c.Elasticsearch.Index == "" {
				return invalid("elasticsearch.index", "is required for the elasticsearch sink")
			}
		default:
			return invalid("manifest.sinks", "unknown sink %q", sink)
		}
	}
	return nil
}

func (c *Config) validateDownload() error {
	if err := c.Download.Years.Validate(); err != nil {
		return invalid("download.years", "%v", err)
	}
	if c.Download.Timeout <= 0 {
		return invalid("download.timeout", "must be positive")
	}
	for _, d := range domain.AllDocTypes() {
		dir, ok := c.Download.DirectoryFor(d)
		if !ok || dir == "" {
			return invalid("download.directories", "missing directory for %s", d)
		}
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if c.Schedule.Mode != ModeManifest && c.Schedule.Mode != ModeDownload {
		return invalid("schedule.mode", "must be manifest or download")
	}
	if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
		return invalid("schedule.cron", "%v", err)
	}
	return nil
}
