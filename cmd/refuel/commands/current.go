package commands

import (
	"refuel/lib/pricestore"
	"refuel/lib/serviceutil"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(currentCmd)
}

func renderPriceChanges(rows []pricestore.StationPriceChange, loc *time.Location) {
	t := newTable()
	t.AppendHeader(table.Row{"ID", "Station", "Address", "Price", "Observed"})
	for _, r := range rows {
		t.AppendRow(table.Row{
			r.StationID,
			r.Name,
			r.Address,
			r.Price.String(),
			formatTime(r.ObservedAt, loc),
		})
	}
	t.Render()
}

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Prints the most recent price of every station.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store, cleanup := openStore(cmd.Context())
		defer cleanup()

		rows, err := store.LoadCurrent(cmd.Context())
		if err != nil {
			cleanup()
			serviceutil.Fatal("failed to load current prices", err)
		}
		renderPriceChanges(rows, newClock().Location())
	},
}
