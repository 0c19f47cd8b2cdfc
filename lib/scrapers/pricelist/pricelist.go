package pricelist

import (
	"context"
	"refuel/internal/components/chrono"
	"refuel/internal/components/telemetry"
	"refuel/lib/document"
	"refuel/lib/price"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("refuel.lib.scrapers.pricelist")

const (
	selectorList     = ".PriceList"
	selectorItem     = ".PriceList__item:not(.list-ad)"
	selectorName     = ".PriceList__itemTitle"
	selectorAddress  = ".PriceList__itemSubtitle"
	selectorUpdated  = ".PriceList__itemUpdated"
	selectorPrice    = ".PriceList__itemPrice"
	report_item_skip = "item-skipped"
	report_item_fail = "extract-item"
)

type Station struct {
	Name    string
	Address string
}

// Observation is a single price shown for a station at a point in time.
type Observation struct {
	Station    Station
	ObservedAt time.Time
	Price      price.Display
}

type Result struct {
	Observations []Observation
	// Benign is the amount of items skipped because the source has no data for them.
	Benign int
	// Broken is the amount of items skipped because they could not be parsed.
	Broken int
}

type Extractor struct {
	time chrono.API
	tel  telemetry.API
}

func NewExtractor(time chrono.API, tel telemetry.API) Extractor {
	return Extractor{
		time: time,
		tel:  telemetry.NewScopedAPI("pricelist", tel),
	}
}

func (e Extractor) extractItem(item *goquery.Selection, now time.Time) (Observation, error) {
	name, address, display, updated, err := join4(
		func() (string, error) {
			return parseText(item, "name", selectorName)
		},
		func() (string, error) {
			return parseText(item, "address", selectorAddress)
		},
		func() (price.Display, error) {
			return parsePrice(item)
		},
		func() (time.Time, error) {
			return parseUpdated(item, now)
		},
	)
	if err != nil {
		return Observation{}, err
	}
	return Observation{
		Station: Station{
			Name:    name,
			Address: address,
		},
		ObservedAt: updated,
		Price:      display,
	}, nil
}

// Extract returns every well-formed item of the price list in document order.
// Items that fail to parse are reported and skipped, only a missing price list fails
// the whole extraction.
func (e Extractor) Extract(ctx context.Context, doc document.Document) (Result, error) {
	_, span := tracer.Start(ctx, "Extract")
	defer span.End()

	list := doc.Find(selectorList)
	if list.Length() == 0 {
		span.RecordError(ErrListNotFound)
		span.SetStatus(codes.Error, "price list not found")
		return Result{}, ErrListNotFound
	}

	now := e.time.Now().In(e.time.Location())

	var result Result
	list.First().Find(selectorItem).Each(func(i int, item *goquery.Selection) {
		obs, err := e.extractItem(item, now)
		if err == nil {
			result.Observations = append(result.Observations, obs)
			return
		}
		if IsBenign(err) {
			result.Benign++
			e.tel.ReportDebug(report_item_skip, i, err)
			return
		}
		result.Broken++
		e.tel.ReportBroken(report_item_fail, i, err)
	})

	span.SetAttributes(
		attribute.Int("accepted", len(result.Observations)),
		attribute.Int("benign", result.Benign),
		attribute.Int("broken", result.Broken),
	)
	if result.Broken > 0 {
		span.AddEvent("skipped broken items", trace.WithAttributes(
			attribute.Int("count", result.Broken),
		))
	}

	return result, nil
}
