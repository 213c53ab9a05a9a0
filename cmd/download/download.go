// Package download implements the command that downloads document files.
package download

import (
	"github.com/paulbousquet/fomcscrape/cmd/common"
	"github.com/spf13/cobra"
)

var bindings = common.Bindings{
	"download.root":        "root",
	"download.years.start": "start-year",
	"download.years.end":   "end-year",
}

// Command returns the download command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download Greenbook, Bluebook and Tealbook files",
		Long: `Scrape the configured years, or read a previously written manifest, and
download each document into its category directory. Files already on disk
are skipped, so an interrupted run can simply be repeated.`,
		Args: cobra.NoArgs,
		RunE: runDownload,
	}

	cmd.Flags().String("root", "", "directory holding the category directories")
	cmd.Flags().Int("start-year", 0, "first year to scrape")
	cmd.Flags().Int("end-year", 0, "last year to scrape")
	cmd.Flags().String("from-manifest", "", "download the links listed in this CSV manifest instead of scraping")

	return cmd
}

func runDownload(cmd *cobra.Command, _ []string) error {
	deps, err := common.NewCommandDeps(cmd, bindings)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Logger.Sync() }()

	fromManifest, _ := cmd.Flags().GetString("from-manifest")
	_, err = deps.Runtime.RunDownload(cmd.Context(), fromManifest)
	return err
}
