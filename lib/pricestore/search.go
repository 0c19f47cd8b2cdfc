package pricestore

import (
	"context"
	"refuel/lib/pricestore/db"
	"refuel/lib/textutil"
	"slices"
	"strings"

	"github.com/antzucaro/matchr"
)

type StationMatch struct {
	Station    db.Station
	Similarity float64
}

func similarity(query, text string) float64 {
	text = textutil.NormalizeName(text)
	best := matchr.JaroWinkler(query, text, false)
	for _, word := range strings.Split(text, " ") {
		sim := matchr.JaroWinkler(query, word, false)
		if sim > best {
			best = sim
		}
	}
	return best
}

// SearchStations ranks stations by how similar their name or address is to the
// query. A limit <= 0 returns every station.
func (s Store) SearchStations(ctx context.Context, query string, limit int) ([]StationMatch, error) {
	stations, err := s.qry.ListStations(ctx)
	if err != nil {
		return nil, err
	}

	query = textutil.NormalizeName(query)
	matches := make([]StationMatch, len(stations))
	for i, station := range stations {
		matches[i] = StationMatch{
			Station: station,
			Similarity: max(
				similarity(query, station.Name),
				similarity(query, station.Address),
			),
		}
	}

	// stations are already ordered by name, a stable sort keeps that for equal scores
	slices.SortStableFunc(matches, func(a, b StationMatch) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		}
		return 0
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
