package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces the environment variables read by AutomaticEnv,
// e.g. FOMC_SCRAPE_USER_AGENT overrides scrape.user_agent.
const EnvPrefix = "FOMC"

// Options controls where NewViper looks for configuration.
type Options struct {
	// File is an explicit config file path; when set it must exist.
	File string
	// SearchPaths are the directories searched for config.yaml when File is empty.
	SearchPaths []string
	// EnvFiles are loaded with godotenv before the environment is read.
	EnvFiles []string
}

// DefaultSearchPaths returns ".", "./config" and "$HOME/.fomcscrape".
func DefaultSearchPaths() []string {
	paths := []string{".", "./config"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".fomcscrape"))
	}
	return paths
}

// NewViper builds a viper instance with defaults, the optional config file,
// .env files and environment overrides applied.
func NewViper(opts Options) (*viper.Viper, error) {
	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}

	v := viper.New()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range opts.SearchPaths {
			v.AddConfigPath(p)
		}
	}

	// Enable automatic environment variable reading before setting defaults
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Config file is optional unless named explicitly
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := bindAppEnvVars(v); err != nil {
		return nil, err
	}

	return v, nil
}

// loadEnvFiles loads .env files; missing files are ignored.
func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	return nil
}

// bindAppEnvVars maps the conventional unprefixed variables onto config keys.
func bindAppEnvVars(v *viper.Viper) error {
	bindings := map[string][]string{
		"app.environment":         {"FOMC_APP_ENVIRONMENT", "APP_ENV"},
		"app.debug":               {"FOMC_APP_DEBUG", "APP_DEBUG"},
		"logger.level":            {"FOMC_LOGGER_LEVEL", "LOG_LEVEL"},
		"logger.encoding":         {"FOMC_LOGGER_ENCODING", "LOG_FORMAT"},
		"database.dsn":            {"FOMC_DATABASE_DSN", "DATABASE_URL"},
		"elasticsearch.addresses": {"FOMC_ELASTICSEARCH_ADDRESSES", "ELASTICSEARCH_HOSTS"},
		"elasticsearch.password":  {"FOMC_ELASTICSEARCH_PASSWORD", "ELASTIC_PASSWORD"},
		"elasticsearch.api_key":   {"FOMC_ELASTICSEARCH_API_KEY", "ELASTICSEARCH_API_KEY"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	applyEnvironment(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvironment adjusts logging for the debug flag and development environment.
func applyEnvironment(cfg *Config) {
	if cfg.App.Debug {
		cfg.Logger.Level = "debug"
	}
	if cfg.App.Environment == EnvDevelopment {
		cfg.Logger.Development = true
		cfg.Logger.Encoding = "console"
	}
}
