package db

type Station struct {
	ID      int64
	Name    string
	Address string
}

type PriceChange struct {
	ID         int64
	StationID  int64
	ObservedAt int64
	Amount     int64
}

// StationPriceChange is a price change joined with the station it belongs to.
type StationPriceChange struct {
	ID         int64
	StationID  int64
	Name       string
	Address    string
	ObservedAt int64
	Amount     int64
}
