// Package apperrors defines the error taxonomy shared across the application.
// Sentinel errors allow callers to branch on failure class with errors.Is,
// while typed errors carry enough context for user-facing reporting.
package apperrors

import (
	"errors"
	"fmt"
	"time"
)

// Domain entity errors represent missing or invalid entities in the system.
var (
	// ErrFundNotFound indicates that no cached data exists for the named fund.
	ErrFundNotFound = errors.New("fund not found")

	// ErrCatalogEmpty indicates discovery produced no fund names.
	ErrCatalogEmpty = errors.New("fund catalog is empty")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrInvalidRange indicates that the provided date range is invalid
	// (start after end, or a stride below one day).
	ErrInvalidRange = errors.New("invalid date range")

	// ErrInvalidDate indicates a date string that is not a real YYYY-MM-DD date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidFundName indicates an empty or oversized fund name.
	ErrInvalidFundName = errors.New("invalid fund name")

	// ErrInsufficientData indicates an analysis was requested over a series
	// with too few points. Callers should surface this as guidance to fetch
	// more data rather than as a failure.
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// ErrFetchDeclined indicates the injected confirmation callback rejected
	// a fetch over an uncached window. No upstream calls were made.
	ErrFetchDeclined = errors.New("fetch declined by caller")
)

// Infrastructure errors represent upstream or storage failures.
var (
	// ErrDiscovery indicates the fund-discovery probe returned a snapshot
	// without the expected fund collection.
	ErrDiscovery = errors.New("fund discovery failed")

	// ErrStorageQuota indicates the storage medium rejected a write because
	// capacity was exceeded. Not retried; the cache is left unchanged and
	// the user should be advised to clear cached data.
	ErrStorageQuota = errors.New("storage quota exceeded")
)

// FetchExhaustedError reports that all retry attempts for a single day's
// snapshot failed. It wraps the last underlying cause.
type FetchExhaustedError struct {
	Date     time.Time
	Attempts int
	Err      error
}

func (e *FetchExhaustedError) Error() string {
	return fmt.Sprintf("fetch for %s failed after %d attempts: %v",
		e.Date.Format("2006-01-02"), e.Attempts, e.Err)
}

func (e *FetchExhaustedError) Unwrap() error { return e.Err }
