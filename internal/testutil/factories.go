package testutil

import (
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/model"
)

// FundBuilder provides a fluent interface for seeding cached funds.
//
// Example usage:
//
//	// Fund with a handful of price points
//	fund := testutil.NewFund().
//	    WithName("CAL Income Fund").
//	    WithPoint("2024-01-01", 100.0).
//	    WithPoint("2024-01-15", 104.5).
//	    Build(t, db)
type FundBuilder struct {
	Name        string
	LastUpdated time.Time
	points      map[string]float64
}

// NewFund creates a FundBuilder with sensible defaults.
func NewFund() *FundBuilder {
	return &FundBuilder{
		Name:        "Test Fund",
		LastUpdated: time.Now().UTC(),
		points:      make(map[string]float64),
	}
}

// WithName sets a custom fund name.
func (b *FundBuilder) WithName(name string) *FundBuilder {
	b.Name = name
	return b
}

// WithLastUpdated sets a custom last-updated timestamp.
func (b *FundBuilder) WithLastUpdated(t time.Time) *FundBuilder {
	b.LastUpdated = t
	return b
}

// WithPoint adds one (date, price) sample.
func (b *FundBuilder) WithPoint(date string, price float64) *FundBuilder {
	b.points[date] = price
	return b
}

// WithDailyPoints adds n consecutive daily samples starting at startDate,
// beginning at startPrice and increasing by step each day.
func (b *FundBuilder) WithDailyPoints(startDate string, n int, startPrice, step float64) *FundBuilder {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		panic(err)
	}
	for i := 0; i < n; i++ {
		d := start.AddDate(0, 0, i).Format("2006-01-02")
		b.points[d] = startPrice + float64(i)*step
	}
	return b
}

// Build inserts the fund and its price points into the test database.
func (b *FundBuilder) Build(t *testing.T, db *sql.DB) model.Fund {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO fund (name, last_updated) VALUES (?, ?)`,
		b.Name, b.LastUpdated.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to insert test fund: %v", err)
	}

	dates := make([]string, 0, len(b.points))
	for d := range b.points {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	for _, d := range dates {
		_, err := db.Exec(
			`INSERT INTO fund_price (id, fund_name, date, price) VALUES (?, ?, ?, ?)`,
			uuid.New().String(), b.Name, d, b.points[d],
		)
		if err != nil {
			t.Fatalf("Failed to insert test price for %s: %v", d, err)
		}
	}

	return model.Fund{
		Name:        b.Name,
		LastUpdated: b.LastUpdated,
		PointCount:  len(b.points),
	}
}

// MakeSeries builds an in-memory price series from a date-to-price mapping,
// sorted ascending by date. Useful for repository merge tests and analyzer
// inputs.
func MakeSeries(t *testing.T, fund string, prices map[string]float64) []model.PricePoint {
	t.Helper()

	dates := make([]string, 0, len(prices))
	for d := range prices {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	series := make([]model.PricePoint, 0, len(dates))
	for _, d := range dates {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			t.Fatalf("bad date %q in test series: %v", d, err)
		}
		series = append(series, model.PricePoint{
			ID:    uuid.New().String(),
			Fund:  fund,
			Date:  parsed.UTC(),
			Price: prices[d],
		})
	}

	return series
}
