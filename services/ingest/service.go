// Package ingest runs ingestion cycles, which turn the current price list into
// stored price changes, either once or on a jittered schedule.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"refuel/internal/assert"
	"refuel/internal/components/telemetry"
	"refuel/lib/document"
	"refuel/lib/scrapers/pricelist"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Persister stores the observations of a cycle and returns how many of them were new.
type Persister interface {
	Persist(ctx context.Context, observations []pricelist.Observation) (int, error)
}

type Service struct {
	source    document.Source
	extractor pricelist.Extractor
	store     Persister
	tel       telemetry.API
}

// NewService creates a Service, store may be nil if the service is only ever
// used for dry runs.
func NewService(
	source document.Source,
	extractor pricelist.Extractor,
	store Persister,
	tel telemetry.API,
) Service {
	assert.NotNil(source)
	assert.NotNil(tel)
	return Service{
		source:    source,
		extractor: extractor,
		store:     store,
		tel:       telemetry.NewScopedAPI("ingest", tel),
	}
}

type CycleOptions struct {
	// DryRun skips persisting, the observations are only logged.
	DryRun bool
	// OnState is called whenever the cycle moves on to another stage.
	OnState func(State)
}

func (o CycleOptions) enter(state State) {
	if o.OnState != nil {
		o.OnState(state)
	}
}

type CycleResult struct {
	ID      uuid.UUID
	Fetched int
	Saved   int
	Benign  int
	Broken  int
	DryRun  bool
}

// Cycle fetches the document, extracts its observations and persists them.
func (s Service) Cycle(ctx context.Context, opts CycleOptions) (CycleResult, error) {
	result := CycleResult{
		ID:     uuid.New(),
		DryRun: opts.DryRun,
	}

	ctx, span := tracer.Start(ctx, "Cycle", trace.WithAttributes(
		attribute.String("cycle_id", result.ID.String()),
		attribute.Bool("dry_run", opts.DryRun),
	))
	defer span.End()

	result, err := s.cycle(ctx, opts, result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func (s Service) cycle(ctx context.Context, opts CycleOptions, result CycleResult) (CycleResult, error) {
	opts.enter(Fetching)
	doc, err := s.source.Document(ctx)
	if err != nil {
		return result, fmt.Errorf("get document: %w", err)
	}

	opts.enter(Extracting)
	extracted, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		return result, fmt.Errorf("extract prices: %w", err)
	}
	result.Fetched = len(extracted.Observations)
	result.Benign = extracted.Benign
	result.Broken = extracted.Broken

	fetchedCounter.Add(ctx, int64(result.Fetched))
	skippedCounter.Add(ctx, int64(result.Benign), metric.WithAttributes(attribute.String("kind", "benign")))
	skippedCounter.Add(ctx, int64(result.Broken), metric.WithAttributes(attribute.String("kind", "broken")))
	s.tel.ReportCount(report_fetched, int64(result.Fetched))

	if opts.DryRun {
		for _, obs := range extracted.Observations {
			slog.DebugContext(
				ctx, "price change candidate",
				"name", obs.Station.Name,
				"address", obs.Station.Address,
				"observed_at", obs.ObservedAt,
				"price", obs.Price.String(),
			)
		}
		slog.InfoContext(ctx, "prices fetched", "cycle", result.ID, "fetched", result.Fetched)
		slog.WarnContext(ctx, "price changes not saved", "cycle", result.ID)
		return result, nil
	}

	if s.store == nil {
		return result, fmt.Errorf("persist prices: no store configured")
	}
	opts.enter(Persisting)
	saved, err := s.store.Persist(ctx, extracted.Observations)
	if err != nil {
		return result, fmt.Errorf("persist prices: %w", err)
	}
	result.Saved = saved

	savedCounter.Add(ctx, int64(saved))
	s.tel.ReportCount(report_saved, int64(saved))
	slog.InfoContext(
		ctx, "price changes saved",
		"cycle", result.ID,
		"saved", result.Saved,
		"fetched", result.Fetched,
	)
	return result, nil
}
