package commands

import (
	"log/slog"
	"refuel/lib/document"
	"refuel/lib/serviceutil"
	"refuel/lib/telemetry"
	"refuel/services/ingest"
	"time"

	"github.com/spf13/cobra"
)

var runDryRun bool

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Log the prices instead of saving them.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--dry-run]",
	Short: "Runs ingestion cycles on a jittered interval until interrupted.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		telemetry.InstrumentPerfStats(ctx, time.Second*30)

		source := document.URLSource{
			Fetcher: newFetcher(),
			Url:     config.Url,
		}
		service, cleanup := newIngestService(ctx, source, runDryRun)
		defer cleanup()

		slog.InfoContext(
			ctx, "starting ingestion loop",
			"url", config.Url,
			"interval", config.Interval(),
			"max_jitter", config.MaxJitter(),
			"dry_run", runDryRun,
		)
		loop := ingest.NewLoop(service, ingest.LoopOptions{
			Interval:      config.Interval(),
			MaxJitter:     config.MaxJitter(),
			CycleTimeout:  config.CycleTimeout(),
			ShutdownGrace: config.ShutdownGrace(),
			DryRun:        runDryRun,
			Clock:         newClock(),
		})
		err := loop.Run(ctx)
		if err != nil {
			cleanup()
			serviceutil.Fatal("ingestion loop failed", err)
		}
	},
}
