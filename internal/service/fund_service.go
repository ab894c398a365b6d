package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/apperrors"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/cal"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/dateutil"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/model"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/repository"
)

// FetchOptions customises a single EnsureRange operation.
type FetchOptions struct {
	// Confirm, when set, is invoked with the number of missing dates before
	// any upstream call is made. Returning false aborts the operation with
	// apperrors.ErrFetchDeclined and zero upstream calls. This is the
	// capability the presentation layer injects in place of a blocking
	// confirmation dialog.
	Confirm func(missing int) bool

	// Progress, when set, receives state transitions and per-date progress.
	// It is called between fetches, never concurrently.
	Progress func(model.FetchProgress)
}

// FundService owns the fetch orchestration: given a fund and a date window
// it computes the set of dates not yet cached, drives the upstream client
// for each missing date strictly sequentially, tolerates and counts
// individual failures, and commits the merged result to the cache in one
// write.
type FundService struct {
	fundRepo  *repository.FundRepository
	calClient cal.Client

	// Per-fund locks keep EnsureRange single-writer per fund, so two
	// concurrent requests for the same fund cannot interleave upstream
	// batches or merges.
	fetchLocks sync.Map // fund name -> *sync.Mutex
}

// NewFundService creates a new FundService with the provided dependencies.
func NewFundService(fundRepo *repository.FundRepository, calClient cal.Client) *FundService {
	return &FundService{
		fundRepo:  fundRepo,
		calClient: calClient,
	}
}

// GetSeries retrieves the cached price series for a fund restricted to
// [start, end], in ascending date order, plus the last-updated timestamp.
func (s *FundService) GetSeries(fundName string, start, end time.Time) ([]model.PricePoint, time.Time, error) {
	return s.fundRepo.GetSeries(fundName, start, end)
}

// ListCachedFunds returns every cached fund with point counts.
func (s *FundService) ListCachedFunds() ([]model.Fund, error) {
	return s.fundRepo.ListCachedFunds()
}

// Clear removes one fund's cached series.
func (s *FundService) Clear(ctx context.Context, fundName string) error {
	return s.fundRepo.Clear(ctx, fundName)
}

// ClearAll removes the entire price cache.
func (s *FundService) ClearAll(ctx context.Context) error {
	return s.fundRepo.ClearAll(ctx)
}

// UsageSummary reports the approximate cache footprint.
func (s *FundService) UsageSummary() (model.CacheUsage, error) {
	return s.fundRepo.UsageSummary()
}

// EnsureRange makes sure the cached series for fundName covers the sampled
// dates of [start, end] at the given stride, fetching only the missing ones.
//
// The operation advances through ComputingGaps, Fetching and Committing.
// Upstream calls are issued one at a time; each missing date that fails
// after the client's internal retries increments the error count and the
// batch continues. Whatever was fetched successfully is committed in a
// single merge. A non-zero error count alongside committed points is a
// successful-with-warnings outcome: the report's Partial flag is advisory
// and no automatic retry of the failed subset happens within this call.
// Failed dates stay missing, so the next EnsureRange over the same window
// naturally retries them.
//
// Cancellation takes effect only between individual date fetches; the cache
// is left in whatever state the last completed merge established.
func (s *FundService) EnsureRange(ctx context.Context, fundName string, start, end time.Time, strideDays int, opts FetchOptions) (model.FetchReport, error) {
	if fundName == "" {
		return model.FetchReport{}, apperrors.ErrInvalidFundName
	}

	lock := s.lockFor(fundName)
	lock.Lock()
	defer lock.Unlock()

	report := model.FetchReport{Fund: fundName, State: model.FetchIdle}

	report.State = model.FetchComputingGaps
	notify(opts.Progress, model.FetchProgress{State: model.FetchComputingGaps})

	expected, err := dateutil.Generate(start, end, strideDays)
	if err != nil {
		return report, err
	}

	cached, _, err := s.fundRepo.GetSeries(fundName, time.Time{}, time.Time{})
	if err != nil {
		return report, err
	}

	cachedDates := make(map[string]bool, len(cached))
	for _, p := range cached {
		cachedDates[dateutil.FormatDate(p.Date)] = true
	}

	missing := make([]time.Time, 0, len(expected))
	for _, d := range expected {
		if !cachedDates[dateutil.FormatDate(d)] {
			missing = append(missing, d)
		}
	}

	if len(missing) == 0 {
		// Nothing to do - not an error.
		report.State = model.FetchDone
		report.TotalPoints = len(cached)
		notify(opts.Progress, model.FetchProgress{State: model.FetchDone})
		return report, nil
	}

	if opts.Confirm != nil && !opts.Confirm(len(missing)) {
		report.State = model.FetchIdle
		return report, apperrors.ErrFetchDeclined
	}

	report.State = model.FetchFetching
	fetched := make([]model.PricePoint, 0, len(missing))
	var cancelled error

	for i, date := range missing {
		if err := ctx.Err(); err != nil {
			// Abort between fetches, never mid-request. What was already
			// fetched still gets committed below.
			cancelled = err
			break
		}

		notify(opts.Progress, model.FetchProgress{
			State: model.FetchFetching,
			Index: i + 1,
			Total: len(missing),
			Date:  dateutil.FormatDate(date),
		})

		snapshot, err := s.calClient.FetchDay(ctx, date)
		if err != nil {
			// A single date's failure never aborts the batch.
			report.ErrorCount++
			continue
		}

		price, ok := snapshot.PriceFor(fundName)
		if !ok {
			// Fund absent from this day's snapshot: contributes nothing.
			continue
		}

		fetched = append(fetched, model.PricePoint{
			Fund:  fundName,
			Date:  date,
			Price: price,
		})
		report.FetchedCount++
	}

	report.State = model.FetchCommitting
	notify(opts.Progress, model.FetchProgress{State: model.FetchCommitting})

	// Commit on a fresh context so a cancellation that interrupted the fetch
	// loop does not also discard the points already fetched.
	commitCtx := ctx
	if cancelled != nil {
		commitCtx = context.Background()
	}

	if len(fetched) > 0 {
		if err := s.fundRepo.MergeSeries(commitCtx, fundName, fetched); err != nil {
			// The fetched points are not durably cached. Hand them back in the
			// report so the caller can re-save them without refetching.
			report.Partial = true
			report.State = model.FetchPartialFailure
			report.FetchedPoints = fetched
			return report, fmt.Errorf("failed to commit fetched points: %w", err)
		}
	}

	merged, _, err := s.fundRepo.GetSeries(fundName, time.Time{}, time.Time{})
	if err != nil {
		return report, err
	}
	report.TotalPoints = len(merged)

	if report.ErrorCount > 0 {
		report.State = model.FetchPartialFailure
		report.Partial = true
	} else {
		report.State = model.FetchDone
	}
	notify(opts.Progress, model.FetchProgress{State: report.State, Total: len(missing)})

	return report, cancelled
}

// WriteCSV streams the fund's full cached series as CSV: a Date,Price
// header then one row per point in ascending date order. The format is a
// fixed interoperability contract with spreadsheet imports.
func (s *FundService) WriteCSV(w io.Writer, fundName string) error {
	series, _, err := s.fundRepo.GetSeries(fundName, time.Time{}, time.Time{})
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return apperrors.ErrFundNotFound
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Price"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, p := range series {
		record := []string{
			dateutil.FormatDate(p.Date),
			strconv.FormatFloat(p.Price, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *FundService) lockFor(fundName string) *sync.Mutex {
	actual, _ := s.fetchLocks.LoadOrStore(fundName, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

func notify(fn func(model.FetchProgress), p model.FetchProgress) {
	if fn != nil {
		fn(p)
	}
}
