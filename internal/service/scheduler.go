package service

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/dateutil"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/model"
)

// Scheduler tops up every cached fund on a cron schedule, fetching the gap
// between each fund's newest cached point and yesterday at the configured
// stride. Funds with no cached data are skipped; scheduled refresh never
// initiates coverage for a fund the user has not fetched.
type Scheduler struct {
	cron        *cron.Cron
	fundService *FundService
	strideDays  int
}

// NewScheduler creates a Scheduler refreshing at the given stride.
func NewScheduler(fundService *FundService, strideDays int) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		fundService: fundService,
		strideDays:  strideDays,
	}
}

// Register installs the refresh task under the given cron expression.
func (s *Scheduler) Register(cronExpr string) error {
	_, err := s.cron.AddFunc(cronExpr, s.refreshAll)
	return err
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("scheduler started")
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("scheduler stopped")
}

// RunNow executes one refresh pass immediately.
func (s *Scheduler) RunNow() {
	s.refreshAll()
}

func (s *Scheduler) refreshAll() {
	funds, err := s.fundService.ListCachedFunds()
	if err != nil {
		log.Printf("scheduled refresh: failed to list cached funds: %v", err)
		return
	}

	yesterday := dateutil.Yesterday()

	for _, fund := range funds {
		series, _, err := s.fundService.GetSeries(fund.Name, time.Time{}, time.Time{})
		if err != nil {
			log.Printf("scheduled refresh: failed to read series for %q: %v", fund.Name, err)
			continue
		}
		if len(series) == 0 {
			continue
		}

		start := series[len(series)-1].Date
		if start.After(yesterday) {
			continue
		}

		report, err := s.fundService.EnsureRange(
			context.Background(), fund.Name, start, yesterday, s.strideDays, FetchOptions{},
		)
		if err != nil {
			log.Printf("scheduled refresh: %q failed: %v", fund.Name, err)
			continue
		}
		if report.State == model.FetchPartialFailure {
			log.Printf("scheduled refresh: %q partially failed, fetched=%d errors=%d",
				fund.Name, report.FetchedCount, report.ErrorCount)
		} else if report.FetchedCount > 0 {
			log.Printf("scheduled refresh: %q fetched=%d total=%d",
				fund.Name, report.FetchedCount, report.TotalPoints)
		}
	}
}
