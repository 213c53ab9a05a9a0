// Package configcmd implements the config command group.
package configcmd

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"

	"github.com/paulbousquet/fomcscrape/cmd/common"
	"github.com/paulbousquet/fomcscrape/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrFileExists is returned by config init when the target exists and --force is not set.
var ErrFileExists = errors.New("config file already exists")

const redacted = "[redacted]"

// keywordPassword matches the password of a key=value connection string.
var keywordPassword = regexp.MustCompile(`(?i)(password\s*=\s*)('[^']*'|\S+)`)

// Command returns the config command and its subcommands.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}
	cmd.AddCommand(newInitCmd(), newShowCmd())
	return cmd
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config.yaml holding every default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, _ := cmd.Flags().GetString("output")
			force, _ := cmd.Flags().GetBool("force")

			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("%w: %s", ErrFileExists, output)
			}

			v := viper.New()
			config.SetDefaults(v)

			data, err := yaml.Marshal(v.AllSettings())
			if err != nil {
				return fmt.Errorf("encode defaults: %w", err)
			}
			if err = os.WriteFile(output, data, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "config.yaml", "file to write")
	cmd.Flags().Bool("force", false, "overwrite an existing file")
	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := common.LoadConfig(cmd, nil)
			if err != nil {
				return err
			}
			return Show(cmd.OutOrStdout(), cfg)
		},
	}
}

// Show writes cfg as YAML with credentials masked.
func Show(w io.Writer, cfg *config.Config) error {
	c := *cfg
	if c.Elasticsearch.Password != "" {
		c.Elasticsearch.Password = redacted
	}
	if c.Elasticsearch.APIKey != "" {
		c.Elasticsearch.APIKey = redacted
	}
	c.Database.DSN = RedactDSN(c.Database.DSN)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

// RedactDSN masks the password of a URL or key=value data source name.
func RedactDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		return u.Redacted()
	}
	return keywordPassword.ReplaceAllString(dsn, "${1}"+redacted)
}
