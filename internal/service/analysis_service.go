package service

import (
	"fmt"
	"time"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/analysis"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/apperrors"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/model"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/repository"
)

// DefaultMovementThresholdPct is the relative-change magnitude at which a
// consecutive-pair move counts as significant, when the caller does not
// supply one.
const DefaultMovementThresholdPct = 5.0

// AnalysisService computes derived statistics over cached price series.
// Results are produced on demand and never stored.
type AnalysisService struct {
	fundRepo *repository.FundRepository
	events   []model.MarketEvent
}

// NewAnalysisService creates a new AnalysisService reading from the given
// repository and using the provided contextual-event catalog.
func NewAnalysisService(fundRepo *repository.FundRepository, events []model.MarketEvent) *AnalysisService {
	return &AnalysisService{
		fundRepo: fundRepo,
		events:   events,
	}
}

// Analyze produces the full derived view over a fund's cached series
// restricted to [start, end]: summary statistics, annualized volatility,
// trend classification, significant movements, overlapping contextual
// events, and readable insights.
//
// Fails with apperrors.ErrInsufficientData when the window holds fewer than
// two points; callers should present that as "fetch more data" guidance.
func (s *AnalysisService) Analyze(fundName string, start, end time.Time, thresholdPct float64) (model.AnalysisResult, error) {
	if thresholdPct <= 0 {
		thresholdPct = DefaultMovementThresholdPct
	}

	series, _, err := s.fundRepo.GetSeries(fundName, start, end)
	if err != nil {
		return model.AnalysisResult{}, err
	}

	// An omitted bound means "whole cached history". Pin it to the series'
	// actual extent so the event overlap and the reported window match the
	// data that was analyzed.
	if len(series) > 0 {
		if start.IsZero() {
			start = series[0].Date
		}
		if end.IsZero() {
			end = series[len(series)-1].Date
		}
	}

	summary, err := analysis.Summary(series)
	if err != nil {
		return model.AnalysisResult{}, err
	}

	trend, err := analysis.Trend(series)
	if err != nil {
		return model.AnalysisResult{}, err
	}

	volatility := analysis.Volatility(series)
	events := analysis.ContextualEvents(start, end, s.events)

	return model.AnalysisResult{
		Fund:          fundName,
		StartDate:     start,
		EndDate:       end,
		Summary:       summary,
		VolatilityPct: volatility,
		Trend:         trend,
		Movements:     analysis.SignificantMovements(series, thresholdPct),
		Events:        events,
		Insights:      analysis.Insights(summary, volatility, trend, events),
	}, nil
}

// ComparePeriods summarizes two windows of the same fund independently and
// reports the differences in total return and mean price.
func (s *AnalysisService) ComparePeriods(fundName string, aStart, aEnd, bStart, bEnd time.Time) (model.PeriodComparison, error) {
	if aStart.After(aEnd) || bStart.After(bEnd) {
		return model.PeriodComparison{}, fmt.Errorf("%w: period start after end", apperrors.ErrInvalidRange)
	}

	seriesA, _, err := s.fundRepo.GetSeries(fundName, aStart, aEnd)
	if err != nil {
		return model.PeriodComparison{}, err
	}
	seriesB, _, err := s.fundRepo.GetSeries(fundName, bStart, bEnd)
	if err != nil {
		return model.PeriodComparison{}, err
	}

	return analysis.ComparePeriods(seriesA, seriesB)
}
