package model

import "time"

// Fund represents a cached fund record. The display name is the unique
// identifier; LastUpdated is the wall-clock time of the most recent
// successful merge into its price series.
type Fund struct {
	Name        string    `json:"name"`
	LastUpdated time.Time `json:"lastUpdated"`
	PointCount  int       `json:"pointCount"`
}

// PricePoint is a single entry of a fund's price series: one calendar date
// and the fund's unit price on that date. Dates are normalized to midnight
// UTC so that the ISO string form orders chronologically.
type PricePoint struct {
	ID    string    `json:"id"`
	Fund  string    `json:"fund"`
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// CacheUsage reports an estimate of the storage consumed by the price cache.
// Bytes are approximate, not a precise accounting.
type CacheUsage struct {
	UsedBytes   int64   `json:"usedBytes"`
	UsedMB      float64 `json:"usedMB"`
	CachedFunds int     `json:"cachedFunds"`
}
