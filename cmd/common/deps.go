// Package common provides shared utilities for command implementations.
package common

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/paulbousquet/fomcscrape/internal/bootstrap"
	"github.com/paulbousquet/fomcscrape/internal/config"
	"github.com/paulbousquet/fomcscrape/internal/httpclient"
	"github.com/paulbousquet/fomcscrape/internal/logger"
	"github.com/paulbousquet/fomcscrape/internal/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CommandDeps holds common dependencies for all commands.
type CommandDeps struct {
	Logger  logger.Logger
	Config  *config.Config
	Runtime *bootstrap.Runtime
	RunID   string
}

// Validate ensures all required dependencies are present.
func (d CommandDeps) Validate() error {
	if d.Logger == nil {
		return ErrLoggerRequired
	}
	if d.Config == nil {
		return ErrConfigRequired
	}
	if d.Runtime == nil {
		return ErrRuntimeRequired
	}
	return nil
}

// Bindings maps config keys to the names of the command's own flags.
type Bindings map[string]string

// globalBindings are the persistent root flags every command honours.
var globalBindings = Bindings{
	"app.debug":    "debug",
	"app.progress": "progress",
}

// LoadConfig builds the configuration for cmd: defaults, the config file named
// by --config (or found on the search paths), .env, the environment and
// finally any flag the user set.
func LoadConfig(cmd *cobra.Command, bindings Bindings) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")

	v, err := config.NewViper(config.Options{
		File:        file,
		SearchPaths: config.DefaultSearchPaths(),
	})
	if err != nil {
		return nil, err
	}

	if err = bindFlags(v, cmd, globalBindings); err != nil {
		return nil, err
	}
	if err = bindFlags(v, cmd, bindings); err != nil {
		return nil, err
	}

	return config.Load(v)
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, bindings Bindings) error {
	for key, name := range bindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind %s flag: %w", name, err)
		}
	}
	return nil
}

// NewCommandDeps loads the configuration and builds the logger and runtime
// shared by one command invocation.
func NewCommandDeps(cmd *cobra.Command, bindings Bindings) (*CommandDeps, error) {
	cfg, err := LoadConfig(cmd, bindings)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	runID := uuid.NewString()
	log = log.With(logger.RunID(runID))

	deps := &CommandDeps{
		Logger: log,
		Config: cfg,
		RunID:  runID,
		Runtime: &bootstrap.Runtime{
			Config:    cfg,
			Logger:    log,
			Transport: httpclient.NewTransport(httpclient.TransportConfig{}),
			Metrics:   metrics.New(),
			Out:       cmd.OutOrStdout(),
		},
	}
	if err = deps.Validate(); err != nil {
		return nil, err
	}
	return deps, nil
}
