package commands

import (
	"fmt"
	"refuel/lib/pricestore"
	"refuel/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	historyStation int64
	historyLimit   int
)

func init() {
	flags := historyCmd.Flags()
	flags.Int64Var(&historyStation, "station", 0, "Only print the history of the station with this id.")
	flags.IntVar(&historyLimit, "limit", 50, "The maximum amount of price changes to print, 0 prints all.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--station <id>] [--limit <n>]",
	Short: "Prints price changes, newest first.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store, cleanup := openStore(ctx)
		defer cleanup()

		var rows []pricestore.StationPriceChange
		var err error
		if historyStation != 0 {
			_, err = store.GetStation(ctx, historyStation)
			if err != nil {
				cleanup()
				serviceutil.Fatal(fmt.Sprintf("failed to get station %d", historyStation), err)
			}
			rows, err = store.LoadStationHistory(ctx, historyStation)
		} else {
			rows, err = store.LoadAllHistory(ctx)
		}
		if err != nil {
			cleanup()
			serviceutil.Fatal("failed to load price history", err)
		}

		if historyLimit > 0 && len(rows) > historyLimit {
			rows = rows[:historyLimit]
		}
		renderPriceChanges(rows, newClock().Location())
	},
}
