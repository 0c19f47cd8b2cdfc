package commands

import (
	"refuel/lib/document"
	"refuel/lib/serviceutil"
	"refuel/services/ingest"

	"github.com/spf13/cobra"
)

var (
	runSingleDownloaded string
	runSingleDryRun     bool
)

func init() {
	flags := runSingleCmd.Flags()
	flags.StringVar(&runSingleDownloaded, "downloaded", "", "Use a page saved with download instead of fetching it.")
	flags.BoolVar(&runSingleDryRun, "dry-run", false, "Log the prices instead of saving them.")
	rootCmd.AddCommand(runSingleCmd)
}

var runSingleCmd = &cobra.Command{
	Use:   "run-single [--downloaded <path/to/page.html>] [--dry-run]",
	Short: "Runs a single ingestion cycle.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		var source document.Source = document.URLSource{
			Fetcher: newFetcher(),
			Url:     config.Url,
		}
		if runSingleDownloaded != "" {
			source = document.FileSource{Path: runSingleDownloaded}
		}

		service, cleanup := newIngestService(ctx, source, runSingleDryRun)
		defer cleanup()

		_, err := service.Cycle(ctx, ingest.CycleOptions{DryRun: runSingleDryRun})
		if err != nil {
			cleanup()
			serviceutil.Fatal("ingestion cycle failed", err)
		}
	},
}
