package pricelist

import (
	"context"
	"errors"
	"html"
	"os"
	"path/filepath"
	"refuel/internal/components/chrono"
	"refuel/internal/components/telemetry"
	"refuel/lib/document"
	"refuel/lib/price"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var berlin = time.FixedZone("CEST", 2*60*60)

func fixture(t testing.TB, name string) document.Document {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	doc, err := document.Parse(raw)
	require.NoError(t, err)
	return doc
}

func inline(t testing.TB, markup string) document.Document {
	t.Helper()
	doc, err := document.Parse([]byte(markup))
	require.NoError(t, err)
	return doc
}

func newTestExtractor(now time.Time) (Extractor, *telemetry.RecordingAPI) {
	tel := telemetry.NewRecordingAPI()
	return NewExtractor(chrono.FixedImpl{Time: now}, tel), tel
}

func TestExtractWellFormed(t *testing.T) {
	extractor, tel := newTestExtractor(time.Date(2023, 6, 15, 10, 0, 0, 0, berlin))

	result, err := extractor.Extract(context.Background(), fixture(t, "prices.html"))
	require.NoError(t, err)

	expected := []Observation{
		{
			Station:    Station{Name: "Aral Tankstelle", Address: "Holzmarktstr. 12, 10179 Berlin"},
			ObservedAt: time.Date(2023, 6, 14, 12, 34, 0, 0, berlin).UTC(),
			Price:      price.Display{1, 78, 9},
		},
		{
			Station:    Station{Name: "Shell", Address: "Mollstr. 1, 10178 Berlin"},
			ObservedAt: time.Date(2023, 6, 13, 9, 5, 0, 0, berlin).UTC(),
			Price:      price.Display{1, 69, 9},
		},
		{
			Station:    Station{Name: "JET", Address: "Storkower Str. 140, 10407 Berlin"},
			ObservedAt: time.Date(2023, 6, 14, 7, 15, 0, 0, berlin).UTC(),
			Price:      price.Display{1, 74, 9},
		},
		{
			Station:    Station{Name: "Esso", Address: "Greifswalder Str. 80, 10405 Berlin"},
			ObservedAt: time.Date(2023, 6, 15, 9, 59, 0, 0, berlin).UTC(),
			Price:      price.Display{2, 1, 0},
		},
	}
	if diff := cmp.Diff(expected, result.Observations); diff != "" {
		t.Fatalf("observations mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, 3, result.Benign)
	require.Equal(t, 0, result.Broken)
	require.Len(t, tel.Debug, 3)
	require.Empty(t, tel.Broken)

	skipped := map[int]error{}
	for _, report := range tel.Debug {
		require.Equal(t, "pricelist: "+report_item_skip, report.ID)
		err, ok := report.Params[1].(error)
		require.True(t, ok)
		skipped[report.Params[0].(int)] = err
	}

	var invalidPrice *InvalidPriceError
	require.ErrorAs(t, skipped[2], &invalidPrice)
	require.ErrorAs(t, skipped[3], &invalidPrice)

	// a station without a timestamp yet is skipped even when its price is fine
	var invalidUpdated *InvalidUpdatedError
	require.ErrorAs(t, skipped[6], &invalidUpdated)
	require.True(t, IsBenign(skipped[6]))
	require.False(t, errors.As(skipped[6], &invalidPrice))
}

func TestExtractBrokenItems(t *testing.T) {
	extractor, tel := newTestExtractor(time.Date(2023, 6, 15, 10, 0, 0, 0, berlin))

	result, err := extractor.Extract(context.Background(), fixture(t, "broken.html"))
	require.NoError(t, err)

	require.Len(t, result.Observations, 1)
	require.Equal(t, "Shell", result.Observations[0].Station.Name)
	require.Equal(t, 0, result.Benign)
	require.Equal(t, 5, result.Broken)
	require.Empty(t, tel.Debug)
	require.Len(t, tel.Broken, 5)

	reported := map[int]error{}
	for _, report := range tel.Broken {
		require.Equal(t, "pricelist."+report_item_fail, report.ID)
		reported[report.Params[0].(int)] = report.Params[1].(error)
	}

	var selectErr *SelectError
	require.ErrorAs(t, reported[0], &selectErr)
	require.Equal(t, "name", selectErr.Field)
	require.Equal(t, selectorName, selectErr.Selector)

	var mismatch *RegexMismatchError
	require.ErrorAs(t, reported[2], &mismatch)
	require.Equal(t, "updated", mismatch.Field)
	require.Equal(t, "gestern", mismatch.Text)

	// the price mismatch wins over the blank timestamp
	require.ErrorAs(t, reported[3], &mismatch)
	require.Equal(t, "price", mismatch.Field)
	require.False(t, IsBenign(reported[3]))

	var conversion *ConversionError
	require.ErrorAs(t, reported[4], &conversion)
	require.Equal(t, "updated", conversion.Field)

	// the name mismatch wins over the price placeholder
	require.ErrorAs(t, reported[5], &mismatch)
	require.Equal(t, "name", mismatch.Field)
}

func TestExtractListNotFound(t *testing.T) {
	extractor, tel := newTestExtractor(time.Date(2023, 6, 15, 10, 0, 0, 0, berlin))

	_, err := extractor.Extract(context.Background(), inline(t, `<html><body><p>Wartungsarbeiten</p></body></html>`))
	require.ErrorIs(t, err, ErrListNotFound)
	require.Empty(t, tel.Broken)
}

func TestExtractEmptyList(t *testing.T) {
	extractor, _ := newTestExtractor(time.Date(2023, 6, 15, 10, 0, 0, 0, berlin))

	result, err := extractor.Extract(context.Background(), inline(t, `<div class="PriceList"></div>`))
	require.NoError(t, err)
	require.Empty(t, result.Observations)
	require.Zero(t, result.Benign)
	require.Zero(t, result.Broken)
}

func TestExtractFirstListOnly(t *testing.T) {
	extractor, _ := newTestExtractor(time.Date(2023, 6, 15, 10, 0, 0, 0, berlin))

	markup := `<div class="PriceList">
	<div class="PriceList__item">
		<span class="PriceList__itemTitle">Aral</span>
		<span class="PriceList__itemSubtitle">Holzmarktstr. 12</span>
		<span class="PriceList__itemUpdated">14.06. 12:34</span>
		<span class="PriceList__itemPrice">1.78<sup>9</sup></span>
	</div>
</div>
<div class="PriceList">
	<div class="PriceList__item">
		<span class="PriceList__itemTitle">Shell</span>
		<span class="PriceList__itemSubtitle">Mollstr. 1</span>
		<span class="PriceList__itemUpdated">13.06. 09:05</span>
		<span class="PriceList__itemPrice">1.69<sup>9</sup></span>
	</div>
</div>`

	result, err := extractor.Extract(context.Background(), inline(t, markup))
	require.NoError(t, err)
	require.Len(t, result.Observations, 1)
	require.Equal(t, "Aral", result.Observations[0].Station.Name)
}

func TestExtractYearRollover(t *testing.T) {
	extractor, tel := newTestExtractor(time.Date(2024, 1, 1, 0, 30, 0, 0, berlin))

	markup := `<div class="PriceList">
	<div class="PriceList__item">
		<span class="PriceList__itemTitle">Aral</span>
		<span class="PriceList__itemSubtitle">Holzmarktstr. 12</span>
		<span class="PriceList__itemUpdated">31.12. 23:50</span>
		<span class="PriceList__itemPrice">1.78<sup>9</sup></span>
	</div>
	<div class="PriceList__item">
		<span class="PriceList__itemTitle">Shell</span>
		<span class="PriceList__itemSubtitle">Mollstr. 1</span>
		<span class="PriceList__itemUpdated">01.01. 00:10</span>
		<span class="PriceList__itemPrice">1.69<sup>9</sup></span>
	</div>
</div>`

	result, err := extractor.Extract(context.Background(), inline(t, markup))
	require.NoError(t, err)
	require.Empty(t, tel.Broken)
	require.Len(t, result.Observations, 2)
	require.Equal(t, time.Date(2023, 12, 31, 23, 50, 0, 0, berlin).UTC(), result.Observations[0].ObservedAt)
	require.Equal(t, time.Date(2024, 1, 1, 0, 10, 0, 0, berlin).UTC(), result.Observations[1].ObservedAt)
}

func TestResolveYear(t *testing.T) {
	now := time.Date(2023, 6, 15, 10, 0, 0, 0, berlin)

	require.Equal(t, 2023, resolveYear(now, time.June, 15, 9, 0))
	// shown timestamps may run slightly ahead of the local clock
	require.Equal(t, 2023, resolveYear(now, time.June, 16, 9, 0))
	require.Equal(t, 2022, resolveYear(now, time.December, 24, 12, 0))
	require.Equal(t, 2023, resolveYear(now, time.January, 2, 12, 0))
}

func TestIsBenign(t *testing.T) {
	require.True(t, IsBenign(&InvalidPriceError{Text: "-.--"}))
	require.True(t, IsBenign(&InvalidUpdatedError{Text: " "}))
	require.True(t, IsBenign(errors.Join(errors.New("item 3"), &InvalidUpdatedError{})))

	require.False(t, IsBenign(&SelectError{Field: "name"}))
	require.False(t, IsBenign(&RegexMismatchError{Field: "price"}))
	require.False(t, IsBenign(&ConversionError{Field: "price", Err: errors.New("overflow")}))
	require.False(t, IsBenign(&price.RangeError{Component: "minor", Value: 120, Max: 99}))
	require.False(t, IsBenign(ErrListNotFound))
}

func TestJoinFirstErrorWins(t *testing.T) {
	errName := errors.New("name")
	errUpdated := errors.New("updated")

	ok := func() (int, error) { return 1, nil }
	fail := func(err error) func() (int, error) {
		return func() (int, error) { return 0, err }
	}

	a, b, c, d, err := join4(ok, ok, ok, ok)
	require.NoError(t, err)
	require.Equal(t, []int{1, 1, 1, 1}, []int{a, b, c, d})

	_, _, _, _, err = join4(ok, ok, ok, fail(errUpdated))
	require.ErrorIs(t, err, errUpdated)

	_, _, _, _, err = join4(fail(errName), ok, ok, fail(errUpdated))
	require.ErrorIs(t, err, errName)
}

func FuzzExtractItem(f *testing.F) {
	f.Add("Aral", "Holzmarktstr. 12", "14.06. 12:34", "1.78", "9")
	f.Add("", " ", "   ", "-.--", "-")
	f.Add("Shell\nBerlin", "Mollstr. 1", "31.02.2023 10:00", "9.99", "9")
	f.Add("JET", "Storkower Str. 140", "99.99. 99:99", "1.7", "89")

	extractor, _ := newTestExtractor(time.Date(2023, 6, 15, 10, 0, 0, 0, berlin))

	f.Fuzz(func(t *testing.T, name, address, updated, priceText, subText string) {
		markup := `<div class="PriceList"><div class="PriceList__item">` +
			`<span class="PriceList__itemTitle">` + html.EscapeString(name) + `</span>` +
			`<span class="PriceList__itemSubtitle">` + html.EscapeString(address) + `</span>` +
			`<span class="PriceList__itemUpdated">` + html.EscapeString(updated) + `</span>` +
			`<span class="PriceList__itemPrice">` + html.EscapeString(priceText) +
			`<sup>` + html.EscapeString(subText) + `</sup></span>` +
			`</div></div>`
		doc, err := document.Parse([]byte(markup))
		if err != nil {
			t.Skip()
		}

		result, err := extractor.Extract(context.Background(), doc)
		require.NoError(t, err)
		require.Equal(t, 1, len(result.Observations)+result.Benign+result.Broken)

		for _, obs := range result.Observations {
			require.NotEmpty(t, obs.Station.Name)
			require.NotEmpty(t, obs.Station.Address)
			require.Less(t, obs.Price.Minor(), uint8(100))
			require.Less(t, obs.Price.SubMinor(), uint8(10))
			require.Equal(t, time.UTC, obs.ObservedAt.Location())
		}
	})
}
