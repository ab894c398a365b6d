// Package analysis provides pure computations over an ordered price series
// restricted to a date window. Nothing here touches storage or the network;
// every function is a deterministic function of its inputs.
package analysis

import (
	"fmt"
	"math"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/apperrors"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/model"
)

const (
	// tradingDaysPerYear is the annualization base for volatility.
	tradingDaysPerYear = 252

	// trendEpsilon is the slope magnitude below which a fitted trend is
	// classified as sideways.
	trendEpsilon = 1e-3
)

// Prices extracts the price values of a series in order.
func Prices(series []model.PricePoint) []float64 {
	prices := make([]float64, len(series))
	for i, p := range series {
		prices[i] = p.Price
	}
	return prices
}

// Summary computes descriptive statistics over the series. Requires at
// least two points; fails with apperrors.ErrInsufficientData otherwise so
// callers can present guidance instead of a crash.
func Summary(series []model.PricePoint) (model.Summary, error) {
	if len(series) < 2 {
		return model.Summary{}, fmt.Errorf("%w: need at least 2 points, have %d",
			apperrors.ErrInsufficientData, len(series))
	}

	first := series[0].Price
	last := series[len(series)-1].Price

	minPrice := math.Inf(1)
	maxPrice := math.Inf(-1)
	sum := 0.0
	for _, p := range series {
		if p.Price < minPrice {
			minPrice = p.Price
		}
		if p.Price > maxPrice {
			maxPrice = p.Price
		}
		sum += p.Price
	}

	return model.Summary{
		Min:            minPrice,
		Max:            maxPrice,
		Mean:           sum / float64(len(series)),
		First:          first,
		Last:           last,
		TotalReturnPct: (last - first) / first * 100,
		Count:          len(series),
	}, nil
}

// Volatility computes annualized volatility as a percentage: the population
// standard deviation of consecutive simple returns, scaled by the square
// root of the trading-day count per year. Series shorter than two points
// have no returns and yield zero.
func Volatility(series []model.PricePoint) float64 {
	if len(series) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Price
		returns = append(returns, (series[i].Price-prev)/prev)
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear) * 100
}

// Trend fits price against position index 0..n-1 by ordinary least squares
// and classifies the slope. Strength is the per-step slope magnitude as a
// percentage of the mean price. Slopes within trendEpsilon of zero are
// sideways.
func Trend(series []model.PricePoint) (model.Trend, error) {
	n := len(series)
	if n < 2 {
		return model.Trend{}, fmt.Errorf("%w: need at least 2 points for a trend fit",
			apperrors.ErrInsufficientData)
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, p := range series {
		x := float64(i)
		sumX += x
		sumY += p.Price
		sumXY += x * p.Price
		sumX2 += x * x
	}

	fn := float64(n)
	slope := (fn*sumXY - sumX*sumY) / (fn*sumX2 - sumX*sumX)
	mean := sumY / fn
	strength := math.Abs(slope) / mean * 100

	direction := model.TrendSideways
	description := "Relatively stable with minimal trend"
	switch {
	case slope > trendEpsilon:
		direction = model.TrendUp
		description = fmt.Sprintf("Upward trend at %.2f%% of mean price per step", strength)
	case slope < -trendEpsilon:
		direction = model.TrendDown
		description = fmt.Sprintf("Downward trend at %.2f%% of mean price per step", strength)
	}

	return model.Trend{
		Direction:   direction,
		Slope:       slope,
		StrengthPct: strength,
		Description: description,
	}, nil
}

// SignificantMovements returns every consecutive pair whose relative change
// magnitude meets thresholdPct, tagged with direction. The movement's date
// is the date of the second point in the pair.
func SignificantMovements(series []model.PricePoint, thresholdPct float64) []model.Movement {
	movements := []model.Movement{}

	for i := 1; i < len(series); i++ {
		prev := series[i-1].Price
		changePct := (series[i].Price - prev) / prev * 100

		if math.Abs(changePct) < thresholdPct {
			continue
		}

		direction := "up"
		if changePct < 0 {
			direction = "down"
		}
		movements = append(movements, model.Movement{
			Date:      series[i].Date,
			FromPrice: prev,
			ToPrice:   series[i].Price,
			ChangePct: changePct,
			Direction: direction,
		})
	}

	return movements
}

// MovingAverage produces a trailing arithmetic mean of the given window
// size, the same length as the input. The first window-1 entries are NaN:
// there is not enough history to average yet.
func MovingAverage(prices []float64, window int) []float64 {
	result := make([]float64, len(prices))
	if window < 1 {
		window = 1
	}

	sum := 0.0
	for i, price := range prices {
		sum += price
		if i >= window {
			sum -= prices[i-window]
		}
		if i < window-1 {
			result[i] = math.NaN()
			continue
		}
		result[i] = sum / float64(window)
	}

	return result
}

// ComparePeriods contrasts two independently summarized windows, reporting
// the difference in total return and mean price (B minus A).
func ComparePeriods(seriesA, seriesB []model.PricePoint) (model.PeriodComparison, error) {
	summaryA, err := Summary(seriesA)
	if err != nil {
		return model.PeriodComparison{}, fmt.Errorf("first period: %w", err)
	}
	summaryB, err := Summary(seriesB)
	if err != nil {
		return model.PeriodComparison{}, fmt.Errorf("second period: %w", err)
	}

	return model.PeriodComparison{
		PeriodA:       summaryA,
		PeriodB:       summaryB,
		ReturnDiffPct: summaryB.TotalReturnPct - summaryA.TotalReturnPct,
		MeanDiff:      summaryB.Mean - summaryA.Mean,
	}, nil
}
