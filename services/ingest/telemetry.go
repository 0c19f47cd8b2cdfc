package ingest

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const library_name = "refuel.services.ingest"

var tracer = otel.Tracer(library_name)
var meter = otel.Meter(library_name)

var fetchedCounter, _ = meter.Int64Counter(
	"observations_fetched",
	metric.WithDescription("price observations accepted by the extractor"),
)
var savedCounter, _ = meter.Int64Counter(
	"price_changes_saved",
	metric.WithDescription("price changes that did not exist before"),
)
var skippedCounter, _ = meter.Int64Counter(
	"items_skipped",
	metric.WithDescription("price list items that were not accepted"),
)

const (
	report_fetched = "fetched"
	report_saved   = "saved"
)
