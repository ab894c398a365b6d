package testutil

import (
	"context"
	"errors"
	"time"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/cal"
)

// MockCALClient is a scriptable implementation of cal.Client for testing.
// Snapshots are keyed by ISO date; individual dates can be marked as
// failing, and every fetch is recorded for call-count assertions.
type MockCALClient struct {
	// Snapshots maps "2006-01-02" date strings to the snapshot to return.
	Snapshots map[string]cal.Snapshot
	// FailDates marks dates whose fetch fails with the mapped error.
	FailDates map[string]error
	// DiscoverNames is returned by DiscoverFunds.
	DiscoverNames []string
	// DiscoverErr, when set, is returned by DiscoverFunds.
	DiscoverErr error

	// FetchCount tracks how many times FetchDay was called.
	FetchCount int
	// FetchedDates records every requested date in call order.
	FetchedDates []string
}

// NewMockCALClient creates an empty mock. Dates without a scripted snapshot
// return an empty snapshot (a day with no listings).
func NewMockCALClient() *MockCALClient {
	return &MockCALClient{
		Snapshots: make(map[string]cal.Snapshot),
		FailDates: make(map[string]error),
	}
}

// WithSnapshot scripts a day's snapshot from a fund-name to price mapping.
func (m *MockCALClient) WithSnapshot(date string, prices map[string]float64) *MockCALClient {
	entries := make([]cal.FundEntry, 0, len(prices))
	for name, price := range prices {
		entries = append(entries, cal.FundEntry{FundName: name, OldPrice: cal.Price(price)})
	}
	m.Snapshots[date] = cal.Snapshot{Funds: entries}
	return m
}

// WithFailure marks a date as failing with a generic upstream error.
func (m *MockCALClient) WithFailure(date string) *MockCALClient {
	m.FailDates[date] = errors.New("upstream unavailable")
	return m
}

// WithDiscovery scripts the discovery result.
func (m *MockCALClient) WithDiscovery(names ...string) *MockCALClient {
	m.DiscoverNames = names
	return m
}

// FetchDay returns the scripted snapshot or failure for the requested date.
func (m *MockCALClient) FetchDay(_ context.Context, date time.Time) (cal.Snapshot, error) {
	key := date.UTC().Format("2006-01-02")
	m.FetchCount++
	m.FetchedDates = append(m.FetchedDates, key)

	if err, ok := m.FailDates[key]; ok {
		return cal.Snapshot{}, err
	}
	if snapshot, ok := m.Snapshots[key]; ok {
		return snapshot, nil
	}
	return cal.Snapshot{Funds: []cal.FundEntry{}}, nil
}

// DiscoverFunds returns the scripted names or error.
func (m *MockCALClient) DiscoverFunds(_ context.Context) ([]string, error) {
	if m.DiscoverErr != nil {
		return nil, m.DiscoverErr
	}
	return m.DiscoverNames, nil
}
