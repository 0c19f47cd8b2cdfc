// Package pricestore persists observed prices and answers queries about
// current and historical prices.
package pricestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"refuel/lib/price"
	"refuel/lib/pricestore/db"
	"refuel/lib/scrapers/pricelist"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("refuel.lib.pricestore")

type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

// StationPriceChange is a price of a station at the time it was observed.
type StationPriceChange struct {
	ID         int64
	StationID  int64
	Name       string
	Address    string
	ObservedAt time.Time
	Price      price.Display
}

func findOrCreateStation(ctx context.Context, qry *db.Queries, name, address string) (int64, error) {
	params := db.GetStationIdParams{
		Name:    name,
		Address: address,
	}
	id, err := qry.GetStationId(ctx, params)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	// a concurrent insert of the same station is ignored, the lookup below
	// returns whichever row won
	err = qry.CreateStation(ctx, db.CreateStationParams{
		Name:    name,
		Address: address,
	})
	if err != nil {
		return 0, err
	}
	return qry.GetStationId(ctx, params)
}

func recordObservation(ctx context.Context, qry *db.Queries, stationId int64, observedAt time.Time, amount int64) (int64, bool, error) {
	id, err := qry.GetPriceChangeId(ctx, db.GetPriceChangeIdParams{
		StationID:  stationId,
		ObservedAt: observedAt.Unix(),
	})
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}

	id, err = qry.CreatePriceChange(ctx, db.CreatePriceChangeParams{
		StationID:  stationId,
		ObservedAt: observedAt.Unix(),
		Amount:     amount,
	})
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// FindOrCreateStation returns the id of the station with the given name and address,
// creating it if it does not exist yet.
func (s Store) FindOrCreateStation(ctx context.Context, name, address string) (int64, error) {
	return findOrCreateStation(ctx, s.qry, name, address)
}

// RecordObservation stores a price change unless the station already has one at
// observedAt, in which case the existing id is returned and created is false.
func (s Store) RecordObservation(ctx context.Context, stationId int64, observedAt time.Time, amount int64) (id int64, created bool, err error) {
	return recordObservation(ctx, s.qry, stationId, observedAt, amount)
}

// Persist records all observations in a single transaction and returns the amount
// of price changes that did not exist before.
func (s Store) Persist(ctx context.Context, observations []pricelist.Observation) (int, error) {
	ctx, span := tracer.Start(ctx, "Persist")
	defer span.End()

	saved, err := s.persist(ctx, observations)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist observations")
		return 0, err
	}
	span.SetAttributes(
		attribute.Int("observations", len(observations)),
		attribute.Int("saved", saved),
	)
	return saved, nil
}

func (s Store) persist(ctx context.Context, observations []pricelist.Observation) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	saved := 0
	for _, obs := range observations {
		stationId, err := findOrCreateStation(ctx, txqry, obs.Station.Name, obs.Station.Address)
		if err != nil {
			return 0, fmt.Errorf("station '%s' (%s): %w", obs.Station.Name, obs.Station.Address, err)
		}
		_, created, err := recordObservation(ctx, txqry, stationId, obs.ObservedAt, obs.Price.Amount())
		if err != nil {
			return 0, fmt.Errorf("price change of '%s' at %s: %w", obs.Station.Name, obs.ObservedAt, err)
		}
		if created {
			saved++
		}
	}

	err = tx.Commit()
	if err != nil {
		return 0, err
	}
	return saved, nil
}

func toStationPriceChanges(rows []db.StationPriceChange) ([]StationPriceChange, error) {
	out := make([]StationPriceChange, len(rows))
	for i, r := range rows {
		display, err := price.ToDisplay(r.Amount)
		if err != nil {
			return nil, fmt.Errorf("price change %d: %w", r.ID, err)
		}
		out[i] = StationPriceChange{
			ID:         r.ID,
			StationID:  r.StationID,
			Name:       r.Name,
			Address:    r.Address,
			ObservedAt: time.Unix(r.ObservedAt, 0).UTC(),
			Price:      display,
		}
	}
	return out, nil
}

// LoadAllHistory returns every price change, newest first. Changes observed at the
// same time are ordered by price and then station.
func (s Store) LoadAllHistory(ctx context.Context) ([]StationPriceChange, error) {
	rows, err := s.qry.ListPriceChanges(ctx)
	if err != nil {
		return nil, err
	}
	return toStationPriceChanges(rows)
}

// LoadCurrent returns the most recent price change of every station ordered by
// station name and address.
func (s Store) LoadCurrent(ctx context.Context) ([]StationPriceChange, error) {
	rows, err := s.qry.ListCurrentPrices(ctx)
	if err != nil {
		return nil, err
	}
	return toStationPriceChanges(rows)
}

// LoadStationHistory returns the price changes of a single station, newest first.
func (s Store) LoadStationHistory(ctx context.Context, stationId int64) ([]StationPriceChange, error) {
	rows, err := s.qry.ListStationPriceChanges(ctx, stationId)
	if err != nil {
		return nil, err
	}
	return toStationPriceChanges(rows)
}

// GetStation returns sql.ErrNoRows if the station does not exist.
func (s Store) GetStation(ctx context.Context, stationId int64) (db.Station, error) {
	return s.qry.GetStation(ctx, stationId)
}

func (s Store) ListStations(ctx context.Context) ([]db.Station, error) {
	return s.qry.ListStations(ctx)
}

func (s Store) CountPriceChanges(ctx context.Context) (int64, error) {
	return s.qry.CountPriceChanges(ctx)
}
