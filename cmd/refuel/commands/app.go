package commands

import (
	"context"
	"log/slog"
	"os"
	"refuel/internal/components/chrono"
	reporter "refuel/internal/components/telemetry"
	"refuel/lib/document"
	"refuel/lib/pricestore"
	"refuel/lib/pricestore/db"
	"refuel/lib/restyutil"
	"refuel/lib/scrapers/pricelist"
	"refuel/lib/serviceutil"
	"refuel/lib/sqliteutil"
	"refuel/services/ingest"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

var tel reporter.API = reporter.SlogAPI{}

func newClock() chrono.API {
	clock, err := chrono.NewStandardImpl(config.Timezone)
	if err != nil {
		serviceutil.Fatal("failed to load timezone", err)
	}
	return clock
}

func newFetcher() document.Fetcher {
	var output restyutil.InstrumentOutput
	if verbose && config.HttpDumpDir != "" {
		fsOutput, err := restyutil.NewFilesystemOutput(config.HttpDumpDir)
		if err != nil {
			serviceutil.Fatal("failed to create http dump dir", err)
		}
		output = fsOutput
	}

	return document.NewFetcher(document.FetcherOptions{
		MinInterval:      config.MinFetchInterval(),
		UserAgent:        config.UserAgent,
		CloudflareBypass: !config.DisableCloudflareBypass,
		Output:           output,
		Tel:              tel,
	})
}

func openStore(ctx context.Context) (pricestore.Store, func()) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*30)
	defer cancel()

	database, err := sqliteutil.OpenAndMigrateDB(ctx, config.Database, config.AuthToken, db.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}
	return pricestore.NewStore(database), func() {
		err := database.Close()
		if err != nil {
			slog.Warn("failed to close db", "err", err)
		}
	}
}

// newIngestService creates the service of a cycle, without a store for dry runs.
func newIngestService(ctx context.Context, source document.Source, dryRun bool) (ingest.Service, func()) {
	extractor := pricelist.NewExtractor(newClock(), tel)
	if dryRun {
		return ingest.NewService(source, extractor, nil, tel), func() {}
	}
	store, closeStore := openStore(ctx)
	return ingest.NewService(source, extractor, store, tel), closeStore
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func formatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02 15:04")
}
