package commands

import (
	"log/slog"
	"refuel/lib/document"
	"refuel/lib/serviceutil"

	"github.com/spf13/cobra"
)

var downloadOut string

func init() {
	downloadCmd.Flags().StringVarP(&downloadOut, "out", "o", "", "The file to save the page to, stdout if unspecified.")
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:   "download [--out <path/to/page.html>]",
	Short: "Downloads the price list page as is, for later use with run-single --downloaded.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		doc, err := newFetcher().Fetch(ctx, config.Url)
		if err != nil {
			serviceutil.Fatal("failed to fetch price list", err)
		}

		if downloadOut == "" {
			err = document.SaveStdout(ctx, doc)
		} else {
			err = document.SaveFile(ctx, doc, downloadOut)
		}
		if err != nil {
			serviceutil.Fatal("failed to save price list", err)
		}
		if downloadOut != "" {
			slog.Info("price list saved", "path", downloadOut, "bytes", len(doc.Raw()))
		}
	},
}
