package commands

import (
	"fmt"
	"refuel/lib/serviceutil"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "The maximum amount of stations to print.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Finds stations with a name or address similar to the query.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, cleanup := openStore(cmd.Context())
		defer cleanup()

		matches, err := store.SearchStations(cmd.Context(), strings.Join(args, " "), searchLimit)
		if err != nil {
			cleanup()
			serviceutil.Fatal("failed to search stations", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Station", "Address", "Similarity"})
		for _, match := range matches {
			t.AppendRow(table.Row{
				match.Station.ID,
				match.Station.Name,
				match.Station.Address,
				fmt.Sprintf("%.2f", match.Similarity),
			})
		}
		t.Render()
	},
}
