package ingest

import (
	"context"
	"refuel/internal/components/chrono"
	"refuel/internal/components/telemetry"
	"refuel/lib/document"
	"refuel/lib/pricestore"
	"refuel/lib/pricestore/db"
	"refuel/lib/scrapers/pricelist"
	"refuel/lib/testutil"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html><body>
<div class="PriceList">
	<div class="PriceList__item">
		<span class="PriceList__itemTitle">Aral</span>
		<span class="PriceList__itemSubtitle">Holzmarktstr. 12, 10179 Berlin</span>
		<span class="PriceList__itemUpdated">14.06. 12:34</span>
		<span class="PriceList__itemPrice">1.78<sup>9</sup></span>
	</div>
	<div class="PriceList__item">
		<span class="PriceList__itemTitle">Shell</span>
		<span class="PriceList__itemSubtitle">Mollstr. 1, 10178 Berlin</span>
		<span class="PriceList__itemUpdated">13.06. 09:05</span>
		<span class="PriceList__itemPrice">1.69<sup>9</sup></span>
	</div>
	<div class="PriceList__item">
		<span class="PriceList__itemTitle">STAR</span>
		<span class="PriceList__itemSubtitle">Frankfurter Allee 100, 10247 Berlin</span>
		<span class="PriceList__itemUpdated"> </span>
		<span class="PriceList__itemPrice">-.--<sup>-</sup></span>
	</div>
	<div class="PriceList__item">
		<span class="PriceList__itemSubtitle">Landsberger Allee 25, 10249 Berlin</span>
		<span class="PriceList__itemUpdated">14.06. 08:00</span>
		<span class="PriceList__itemPrice">1.71<sup>9</sup></span>
	</div>
</div>
</body></html>`

type fixture struct {
	store   pricestore.Store
	tel     *telemetry.RecordingAPI
	service Service
}

func newFixture(t testing.TB, source document.Source) fixture {
	res := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "ingest",
		DbSchema: db.Schema,
	})
	store := pricestore.NewStore(res.DB)
	tel := telemetry.NewRecordingAPI()
	clock := chrono.FixedImpl{Time: time.Date(2023, 6, 15, 10, 0, 0, 0, time.FixedZone("CEST", 2*60*60))}

	return fixture{
		store:   store,
		tel:     tel,
		service: NewService(source, pricelist.NewExtractor(clock, tel), store, tel),
	}
}

func staticPage(t testing.TB, markup string) document.Source {
	doc, err := document.Parse([]byte(markup))
	require.NoError(t, err)
	return document.StaticSource{Doc: doc}
}

func TestCycle(t *testing.T) {
	f := newFixture(t, staticPage(t, page))
	ctx := context.Background()

	var states []State
	result, err := f.service.Cycle(ctx, CycleOptions{
		OnState: func(s State) { states = append(states, s) },
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, result.ID)
	require.Equal(t, 2, result.Fetched)
	require.Equal(t, 2, result.Saved)
	require.Equal(t, 1, result.Benign)
	require.Equal(t, 1, result.Broken)
	require.False(t, result.DryRun)
	require.Equal(t, []State{Fetching, Extracting, Persisting}, states)

	require.Equal(t, int64(2), f.tel.Counts["ingest.fetched"])
	require.Equal(t, int64(2), f.tel.Counts["ingest.saved"])

	// the same page again has nothing new
	again, err := f.service.Cycle(ctx, CycleOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, again.Fetched)
	require.Equal(t, 0, again.Saved)
	require.NotEqual(t, result.ID, again.ID)

	current, err := f.store.LoadCurrent(ctx)
	require.NoError(t, err)
	require.Len(t, current, 2)
}

func TestCycleDryRun(t *testing.T) {
	f := newFixture(t, staticPage(t, page))
	ctx := context.Background()

	var states []State
	result, err := f.service.Cycle(ctx, CycleOptions{
		DryRun:  true,
		OnState: func(s State) { states = append(states, s) },
	})
	require.NoError(t, err)
	require.True(t, result.DryRun)
	require.Equal(t, 2, result.Fetched)
	require.Equal(t, 0, result.Saved)
	require.NotContains(t, states, Persisting)

	count, err := f.store.CountPriceChanges(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestCycleDryRunWithoutStore(t *testing.T) {
	tel := telemetry.NewRecordingAPI()
	clock := chrono.FixedImpl{Time: time.Date(2023, 6, 15, 10, 0, 0, 0, time.UTC)}
	service := NewService(staticPage(t, page), pricelist.NewExtractor(clock, tel), nil, tel)

	result, err := service.Cycle(context.Background(), CycleOptions{DryRun: true})
	require.NoError(t, err)
	require.Equal(t, 2, result.Fetched)

	_, err = service.Cycle(context.Background(), CycleOptions{})
	require.Error(t, err)
}

func TestCycleListNotFound(t *testing.T) {
	f := newFixture(t, staticPage(t, `<html><body>Wartungsarbeiten</body></html>`))

	_, err := f.service.Cycle(context.Background(), CycleOptions{})
	require.ErrorIs(t, err, pricelist.ErrListNotFound)
}

func TestCycleSourceError(t *testing.T) {
	f := newFixture(t, document.FileSource{Path: "testdata/does-not-exist.html"})

	_, err := f.service.Cycle(context.Background(), CycleOptions{})
	var loadErr *document.LoadError
	require.ErrorAs(t, err, &loadErr)
}
