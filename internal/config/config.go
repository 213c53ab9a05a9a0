// Package config provides configuration management for fomcscrape.
// Values come from defaults, an optional YAML file, .env files and FOMC_*
// environment variables, in increasing order of precedence.
package config

import (
	"time"

	"github.com/paulbousquet/fomcscrape/internal/domain"
	"github.com/paulbousquet/fomcscrape/internal/logger"
)

// Config is the complete application configuration.
type Config struct {
	App           AppConfig           `mapstructure:"app" yaml:"app"`
	Logger        logger.Config       `mapstructure:"logger" yaml:"logger"`
	Scrape        ScrapeConfig        `mapstructure:"scrape" yaml:"scrape"`
	Classify      ClassifyConfig      `mapstructure:"classify" yaml:"classify"`
	Manifest      ManifestConfig      `mapstructure:"manifest" yaml:"manifest"`
	Download      DownloadConfig      `mapstructure:"download" yaml:"download"`
	Database      DatabaseConfig      `mapstructure:"database" yaml:"database"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch" yaml:"elasticsearch"`
	Metrics       MetricsConfig       `mapstructure:"metrics" yaml:"metrics"`
	Schedule      ScheduleConfig      `mapstructure:"schedule" yaml:"schedule"`
}

// AppConfig holds process-level settings.
type AppConfig struct {
	// Environment is one of development, production or test.
	Environment string `mapstructure:"environment" yaml:"environment"`
	// Debug forces debug-level logging.
	Debug bool `mapstructure:"debug" yaml:"debug"`
	// Progress renders progress bars on stdout instead of per-step log lines.
	Progress bool `mapstructure:"progress" yaml:"progress"`
}

// ScrapeConfig describes how listing pages are fetched.
type ScrapeConfig struct {
	// PageURLTemplate is the listing page URL with a {year} placeholder.
	PageURLTemplate string `mapstructure:"page_url_template" yaml:"page_url_template"`
	// UserAgent identifies the client on every request.
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
	// PageTimeout bounds each listing page request.
	PageTimeout time.Duration `mapstructure:"page_timeout" yaml:"page_timeout"`
	// MaxPageBytes caps the listing page body size.
	MaxPageBytes int `mapstructure:"max_page_bytes" yaml:"max_page_bytes"`
}

// PatternConfig is one document type / regular expression pair.
type PatternConfig struct {
	DocType string `mapstructure:"doc_type" yaml:"doc_type"`
	Pattern string `mapstructure:"pattern"  yaml:"pattern"`
}

// ClassifyConfig holds the year buckets and pattern tables.
type ClassifyConfig struct {
	// ArchiveYears is the span whose pages publish ZIP bundles instead of PDFs.
	ArchiveYears domain.YearRange `mapstructure:"archive_years" yaml:"archive_years"`
	// Strict drops links matching more than one pattern instead of keeping the first.
	Strict bool `mapstructure:"strict" yaml:"strict"`
	// StandardPatterns applies outside ArchiveYears, in order.
	StandardPatterns []PatternConfig `mapstructure:"standard_patterns" yaml:"standard_patterns"`
	// ArchivePatterns applies inside ArchiveYears, in order.
	ArchivePatterns []PatternConfig `mapstructure:"archive_patterns" yaml:"archive_patterns"`
}

// Manifest sink names.
const (
	SinkCSV           = "csv"
	SinkDatabase      = "database"
	SinkElasticsearch = "elasticsearch"
)

// ManifestConfig configures the manifest run mode.
type ManifestConfig struct {
	Years domain.YearRange `mapstructure:"years" yaml:"years"`
	// Path is the CSV manifest location.
	Path string `mapstructure:"path" yaml:"path"`
	// Sinks lists the manifest destinations (csv, database, elasticsearch).
	Sinks []string `mapstructure:"sinks" yaml:"sinks"`
}

// DownloadConfig configures the download run mode.
type DownloadConfig struct {
	Years domain.YearRange `mapstructure:"years" yaml:"years"`
	// Root is the directory under which category directories are created.
	Root string `mapstructure:"root" yaml:"root"`
	// Timeout bounds each artifact request.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// Directories maps a document type (case-insensitive) to its directory name.
	Directories map[string]string `mapstructure:"directories" yaml:"directories"`
}

// DatabaseConfig configures the SQL manifest sink.
type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `mapstructure:"driver" yaml:"driver"`
	// DSN is the driver-specific data source name.
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// ElasticsearchConfig configures the Elasticsearch manifest sink.
type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses" yaml:"addresses"`
	Username  string   `mapstructure:"username" yaml:"username"`
	Password  string   `mapstructure:"password" yaml:"password"`
	APIKey    string   `mapstructure:"api_key" yaml:"api_key"`
	Index     string   `mapstructure:"index" yaml:"index"`
}

// MetricsConfig configures the Prometheus textfile output.
type MetricsConfig struct {
	// TextfilePath is where run metrics are written; empty disables the file.
	TextfilePath string `mapstructure:"textfile_path" yaml:"textfile_path"`
}

// ScheduleConfig configures the schedule command.
type ScheduleConfig struct {
	// Cron is a standard five-field cron expression.
	Cron string `mapstructure:"cron" yaml:"cron"`
	// Mode is "manifest" or "download".
	Mode string `mapstructure:"mode" yaml:"mode"`
	// Listen is the address serving /health and /metrics; empty disables it.
	Listen string `mapstructure:"listen" yaml:"listen"`
}

// DirectoryFor returns the directory name configured for a document type.
func (c DownloadConfig) DirectoryFor(d domain.DocType) (string, bool) {
	for key, dir := range c.Directories {
		parsed, err := domain.ParseDocType(key)
		if err == nil && parsed == d {
			return dir, true
		}
	}
	return "", false
}
