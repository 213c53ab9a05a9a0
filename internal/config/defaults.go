package config

import (
	"github.com/spf13/viper"
)

// Default values, matching the published archive layout.
const (
	DefaultPageURLTemplate = "https://www.federalreserve.gov/monetarypolicy/fomchistorical{year}.htm"
	DefaultUserAgent       = "FOMC-Collector/1.0"
	DefaultPageTimeout     = "30s"
	DefaultDownloadTimeout = "60s"
	DefaultMaxPageBytes    = 10 * 1024 * 1024
	DefaultManifestPath    = "fomc_books_manifest.csv"
	DefaultScheduleCron    = "0 6 * * 1"

	DefaultFirstYear         = 1983
	DefaultManifestLastYear  = 2019
	DefaultDownloadLastYear  = 2007
	DefaultArchiveFirstYear  = 2008
	DefaultArchiveLastYear   = 2012
	DefaultElasticsearchHost = "http://127.0.0.1:9200"
	DefaultElasticsearchIdx  = "fomc_documents"
)

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app", map[string]any{
		"environment": "production",
		"debug":       false,
		"progress":    false,
	})

	v.SetDefault("logger", map[string]any{
		"level":        "info",
		"encoding":     "json",
		"development":  false,
		"output_paths": []string{"stderr"},
	})

	v.SetDefault("scrape", map[string]any{
		"page_url_template": DefaultPageURLTemplate,
		"user_agent":        DefaultUserAgent,
		"page_timeout":      DefaultPageTimeout,
		"max_page_bytes":    DefaultMaxPageBytes,
	})

	v.SetDefault("classify", map[string]any{
		"archive_years": map[string]any{
			"start": DefaultArchiveFirstYear,
			"end":   DefaultArchiveLastYear,
		},
		"strict": false,
		"standard_patterns": []map[string]any{
			{"doc_type": "Greenbook", "pattern": "gbpt[12]"},
			{"doc_type": "Bluebook", "pattern": "bluebook"},
			{"doc_type": "Tealbook", "pattern": "tealbook[ab]"},
		},
		// No Bluebook archive bundle is published for the archival years.
		"archive_patterns": []map[string]any{
			{"doc_type": "Greenbook", "pattern": "gbmaterial"},
			{"doc_type": "Tealbook", "pattern": "tealbookmaterial"},
		},
	})

	v.SetDefault("manifest", map[string]any{
		"years": map[string]any{
			"start": DefaultFirstYear,
			"end":   DefaultManifestLastYear,
		},
		"path":  DefaultManifestPath,
		"sinks": []string{SinkCSV},
	})

	v.SetDefault("download", map[string]any{
		"years": map[string]any{
			"start": DefaultFirstYear,
			"end":   DefaultDownloadLastYear,
		},
		"root":    ".",
		"timeout": DefaultDownloadTimeout,
		"directories": map[string]any{
			"greenbook": "greenbooks",
			"bluebook":  "bluebooks",
			"tealbook":  "tealbooks",
		},
	})

	v.SetDefault("database", map[string]any{
		"driver": "sqlite",
		"dsn":    "fomc_manifest.db",
	})

	v.SetDefault("elasticsearch", map[string]any{
		"addresses": []string{DefaultElasticsearchHost},
		"username":  "",
		"password":  "",
		"api_key":   "",
		"index":     DefaultElasticsearchIdx,
	})

	v.SetDefault("metrics", map[string]any{
		"textfile_path": "",
	})

	v.SetDefault("schedule", map[string]any{
		"cron":   DefaultScheduleCron,
		"mode":   "manifest",
		"listen": "",
	})
}
