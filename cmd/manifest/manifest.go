// Package manifest implements the command that writes the document manifest.
package manifest

import (
	"github.com/paulbousquet/fomcscrape/cmd/common"
	"github.com/spf13/cobra"
)

var bindings = common.Bindings{
	"manifest.path":        "output",
	"manifest.years.start": "start-year",
	"manifest.years.end":   "end-year",
	"manifest.sinks":       "sink",
}

// Command returns the manifest command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Write a manifest of Greenbook, Bluebook and Tealbook links",
		Long: `Scrape the FOMC historical materials pages for the configured years and
record every classified link. The manifest is written to a CSV file by
default; --sink adds a database table or an Elasticsearch index.`,
		Args: cobra.NoArgs,
		RunE: runManifest,
	}

	cmd.Flags().StringP("output", "o", "", "CSV manifest path")
	cmd.Flags().Int("start-year", 0, "first year to scrape")
	cmd.Flags().Int("end-year", 0, "last year to scrape")
	cmd.Flags().StringSlice("sink", nil, "manifest sinks: csv, database, elasticsearch")

	return cmd
}

func runManifest(cmd *cobra.Command, _ []string) error {
	deps, err := common.NewCommandDeps(cmd, bindings)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Logger.Sync() }()

	_, err = deps.Runtime.RunManifest(cmd.Context())
	return err
}
