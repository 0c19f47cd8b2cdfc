// Package pricequery serves the stored prices as a read-only json api.
package pricequery

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"refuel/lib/pricestore"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("refuel.services.pricequery")

const defaultSearchLimit = 10

type Service struct {
	store pricestore.Store
}

func NewService(store pricestore.Store) Service {
	return Service{store: store}
}

type PriceChange struct {
	ID         int64     `json:"id"`
	StationID  int64     `json:"station_id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	ObservedAt time.Time `json:"observed_at"`
	// Price is the price as it is displayed, ex. "1.789"
	Price  string `json:"price"`
	Amount int64  `json:"amount"`
}

type Station struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	// only set for search results
	Similarity float64 `json:"similarity,omitempty"`
}

type StationPrices struct {
	Station Station       `json:"station"`
	Prices  []PriceChange `json:"prices"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toPriceChanges(rows []pricestore.StationPriceChange) []PriceChange {
	out := make([]PriceChange, len(rows))
	for i, r := range rows {
		out[i] = PriceChange{
			ID:         r.ID,
			StationID:  r.StationID,
			Name:       r.Name,
			Address:    r.Address,
			ObservedAt: r.ObservedAt,
			Price:      r.Price.String(),
			Amount:     r.Price.Amount(),
		}
	}
	return out
}

func writeJson(ctx context.Context, w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		slog.WarnContext(ctx, "failed to write response", "err", err)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", "status", status, "err", err)
	}
	writeJson(ctx, w, status, errorResponse{Error: err.Error()})
}

func parseLimit(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, errors.New("limit must be a non-negative integer")
	}
	return limit, nil
}

// route wraps a handler in a span named after its pattern.
func route(pattern string, handler func(w http.ResponseWriter, r *http.Request) (int, error)) (string, http.Handler) {
	return pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), pattern)
		defer span.End()

		status, err := handler(w, r.WithContext(ctx))
		span.SetAttributes(attribute.Int("http.status_code", status))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			writeError(ctx, w, status, err)
		}
	})
}

// Handler returns the routes of the api.
func (s Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(route("GET /api/prices/current", s.currentPrices))
	mux.Handle(route("GET /api/prices", s.allPrices))
	mux.Handle(route("GET /api/stations", s.stations))
	mux.Handle(route("GET /api/stations/{id}/prices", s.stationPrices))
	return mux
}

func (s Service) currentPrices(w http.ResponseWriter, r *http.Request) (int, error) {
	rows, err := s.store.LoadCurrent(r.Context())
	if err != nil {
		return http.StatusInternalServerError, err
	}
	writeJson(r.Context(), w, http.StatusOK, toPriceChanges(rows))
	return http.StatusOK, nil
}

func (s Service) allPrices(w http.ResponseWriter, r *http.Request) (int, error) {
	limit, err := parseLimit(r, 0)
	if err != nil {
		return http.StatusBadRequest, err
	}
	rows, err := s.store.LoadAllHistory(r.Context())
	if err != nil {
		return http.StatusInternalServerError, err
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	writeJson(r.Context(), w, http.StatusOK, toPriceChanges(rows))
	return http.StatusOK, nil
}

func (s Service) stations(w http.ResponseWriter, r *http.Request) (int, error) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")

	if query == "" {
		stations, err := s.store.ListStations(ctx)
		if err != nil {
			return http.StatusInternalServerError, err
		}
		out := make([]Station, len(stations))
		for i, station := range stations {
			out[i] = Station{ID: station.ID, Name: station.Name, Address: station.Address}
		}
		writeJson(ctx, w, http.StatusOK, out)
		return http.StatusOK, nil
	}

	limit, err := parseLimit(r, defaultSearchLimit)
	if err != nil {
		return http.StatusBadRequest, err
	}
	matches, err := s.store.SearchStations(ctx, query, limit)
	if err != nil {
		return http.StatusInternalServerError, err
	}
	out := make([]Station, len(matches))
	for i, match := range matches {
		out[i] = Station{
			ID:         match.Station.ID,
			Name:       match.Station.Name,
			Address:    match.Station.Address,
			Similarity: match.Similarity,
		}
	}
	writeJson(ctx, w, http.StatusOK, out)
	return http.StatusOK, nil
}

func (s Service) stationPrices(w http.ResponseWriter, r *http.Request) (int, error) {
	ctx := r.Context()
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return http.StatusBadRequest, errors.New("station id must be an integer")
	}

	station, err := s.store.GetStation(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound, errors.New("station not found")
	}
	if err != nil {
		return http.StatusInternalServerError, err
	}
	rows, err := s.store.LoadStationHistory(ctx, id)
	if err != nil {
		return http.StatusInternalServerError, err
	}

	writeJson(ctx, w, http.StatusOK, StationPrices{
		Station: Station{ID: station.ID, Name: station.Name, Address: station.Address},
		Prices:  toPriceChanges(rows),
	})
	return http.StatusOK, nil
}
