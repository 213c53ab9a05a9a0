// Package cmd implements the fomcscrape command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/paulbousquet/fomcscrape/cmd/configcmd"
	"github.com/paulbousquet/fomcscrape/cmd/download"
	"github.com/paulbousquet/fomcscrape/cmd/manifest"
	"github.com/paulbousquet/fomcscrape/cmd/schedule"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

// rootCmd represents the root command for the fomcscrape CLI.
var rootCmd = NewRootCommand()

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "fomcscrape",
		Short: "Collect FOMC Greenbooks, Bluebooks and Tealbooks",
		Long: `fomcscrape walks the Federal Reserve's FOMC historical materials pages,
classifies the links to Greenbook, Bluebook and Tealbook documents, and
either records them in a manifest or downloads them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	// Global flags
	root.PersistentFlags().String(
		"config",
		"",
		"config file (default is ./config.yaml, ./config/config.yaml or ~/.fomcscrape/config.yaml)",
	)
	root.PersistentFlags().Bool("debug", false, "enable debug logging")
	root.PersistentFlags().Bool("progress", false, "show progress bars instead of per-step log lines")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "fomcscrape version %s\n", Version)
		},
	})

	root.AddCommand(
		manifest.Command(),
		download.Command(),
		schedule.Command(),
		configcmd.Command(),
	)

	return root
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}
