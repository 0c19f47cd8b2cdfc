package commands

import (
	"refuel/lib/serviceutil"
	"refuel/services/pricequery"

	"github.com/spf13/cobra"
)

var servePort int

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "The port to listen on, overrides the config.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--port <port>]",
	Short: "Serves the stored prices as a json api.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store, cleanup := openStore(ctx)
		defer cleanup()

		port := config.Port
		if servePort != 0 {
			port = servePort
		}
		handler := serviceutil.VerifyAccessToken(
			config.AccessToken,
			pricequery.NewService(store).Handler(),
		)
		serviceutil.StartHttpServer(ctx, port, handler)
	},
}
