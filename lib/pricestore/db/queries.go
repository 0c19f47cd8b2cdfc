package db

import (
	"context"
)

const getStationId = `
SELECT id FROM stations
WHERE name = ? AND address = ?
`

type GetStationIdParams struct {
	Name    string
	Address string
}

func (q *Queries) GetStationId(ctx context.Context, arg GetStationIdParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, getStationId, arg.Name, arg.Address)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const createStation = `
INSERT INTO stations(name, address) VALUES (?, ?)
ON CONFLICT (name, address) DO NOTHING
`

type CreateStationParams struct {
	Name    string
	Address string
}

func (q *Queries) CreateStation(ctx context.Context, arg CreateStationParams) error {
	_, err := q.db.ExecContext(ctx, createStation, arg.Name, arg.Address)
	return err
}

const getStation = `
SELECT id, name, address FROM stations
WHERE id = ?
`

func (q *Queries) GetStation(ctx context.Context, id int64) (Station, error) {
	row := q.db.QueryRowContext(ctx, getStation, id)
	var i Station
	err := row.Scan(&i.ID, &i.Name, &i.Address)
	return i, err
}

const listStations = `
SELECT id, name, address FROM stations
ORDER BY name ASC, address ASC
`

func (q *Queries) ListStations(ctx context.Context) ([]Station, error) {
	rows, err := q.db.QueryContext(ctx, listStations)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Station
	for rows.Next() {
		var i Station
		if err := rows.Scan(&i.ID, &i.Name, &i.Address); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getPriceChangeId = `
SELECT id FROM price_changes
WHERE station_id = ? AND observed_at = ?
`

type GetPriceChangeIdParams struct {
	StationID  int64
	ObservedAt int64
}

func (q *Queries) GetPriceChangeId(ctx context.Context, arg GetPriceChangeIdParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, getPriceChangeId, arg.StationID, arg.ObservedAt)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const createPriceChange = `
INSERT INTO price_changes(station_id, observed_at, amount) VALUES (?, ?, ?)
RETURNING id
`

type CreatePriceChangeParams struct {
	StationID  int64
	ObservedAt int64
	Amount     int64
}

func (q *Queries) CreatePriceChange(ctx context.Context, arg CreatePriceChangeParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createPriceChange, arg.StationID, arg.ObservedAt, arg.Amount)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const countPriceChanges = `
SELECT COUNT(*) FROM price_changes
`

func (q *Queries) CountPriceChanges(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPriceChanges)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listPriceChanges = `
SELECT pc.id, pc.station_id, s.name, s.address, pc.observed_at, pc.amount
FROM price_changes pc
JOIN stations s ON s.id = pc.station_id
ORDER BY pc.observed_at DESC, pc.amount ASC, s.name ASC, s.address ASC
`

func (q *Queries) ListPriceChanges(ctx context.Context) ([]StationPriceChange, error) {
	return q.queryStationPriceChanges(ctx, listPriceChanges)
}

const listCurrentPrices = `
SELECT pc.id, pc.station_id, s.name, s.address, pc.observed_at, pc.amount
FROM price_changes pc
JOIN stations s ON s.id = pc.station_id
WHERE pc.observed_at = (
    SELECT MAX(latest.observed_at) FROM price_changes latest
    WHERE latest.station_id = pc.station_id
)
ORDER BY s.name ASC, s.address ASC
`

func (q *Queries) ListCurrentPrices(ctx context.Context) ([]StationPriceChange, error) {
	return q.queryStationPriceChanges(ctx, listCurrentPrices)
}

const listStationPriceChanges = `
SELECT pc.id, pc.station_id, s.name, s.address, pc.observed_at, pc.amount
FROM price_changes pc
JOIN stations s ON s.id = pc.station_id
WHERE pc.station_id = ?
ORDER BY pc.observed_at DESC
`

func (q *Queries) ListStationPriceChanges(ctx context.Context, stationID int64) ([]StationPriceChange, error) {
	return q.queryStationPriceChanges(ctx, listStationPriceChanges, stationID)
}

func (q *Queries) queryStationPriceChanges(ctx context.Context, query string, args ...interface{}) ([]StationPriceChange, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []StationPriceChange
	for rows.Next() {
		var i StationPriceChange
		if err := rows.Scan(
			&i.ID,
			&i.StationID,
			&i.Name,
			&i.Address,
			&i.ObservedAt,
			&i.Amount,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
