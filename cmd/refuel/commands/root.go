package commands

import (
	"context"
	"fmt"
	"os"
	"refuel/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath string
	overrides  configOverrides
	verbose    bool
)

// set before any subcommand runs
var config Config
var exporters telemetry.Telemetry

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "refuel.json5", "The config file, searched for upwards from the working directory.")
	flags.StringVar(&overrides.url, "url", "", "The price list to scrape, overrides the config.")
	flags.StringVar(&overrides.database, "db", "", "The database file or libsql url, overrides the config and DATABASE_URL.")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log debug messages.")
}

var rootCmd = &cobra.Command{
	Use:   "refuel",
	Short: "refuel keeps track of the fuel prices listed on a price comparison page.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)

		var err error
		config, err = loadConfig(configPath, overrides)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		exporters, err = telemetry.SetupFromEnv(cmd.Context(), "refuel")
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return exporters.Shutdown(context.WithoutCancel(cmd.Context()))
	},
	SilenceUsage: true,
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
