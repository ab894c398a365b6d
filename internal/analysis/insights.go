package analysis

import (
	"fmt"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/model"
)

// Insights produces human-readable findings from a window's derived
// statistics, in presentation order: performance, volatility, events, trend.
func Insights(summary model.Summary, volatilityPct float64, trend model.Trend, events []model.MarketEvent) []string {
	insights := []string{performanceInsight(summary.TotalReturnPct), volatilityInsight(volatilityPct)}

	highImpact := 0
	for _, e := range events {
		if e.Impact == "High" {
			highImpact++
		}
	}
	if highImpact > 0 {
		insights = append(insights,
			fmt.Sprintf("%d high-impact economic events occurred in this period", highImpact),
			"Performance likely influenced by major economic developments")
	}

	insights = append(insights, fmt.Sprintf("%s: %s", trend.Direction, trend.Description))

	return insights
}

func performanceInsight(totalReturnPct float64) string {
	switch {
	case totalReturnPct > 10:
		return "Strong positive performance during this period"
	case totalReturnPct > 5:
		return "Moderate positive performance"
	case totalReturnPct > 0:
		return "Slight positive performance"
	case totalReturnPct > -5:
		return "Minor decline in performance"
	case totalReturnPct > -10:
		return "Moderate decline in performance"
	default:
		return "Significant decline in performance"
	}
}

func volatilityInsight(volatilityPct float64) string {
	switch {
	case volatilityPct > 30:
		return "High volatility period with significant price swings"
	case volatilityPct > 20:
		return "Moderate volatility with some price fluctuations"
	default:
		return "Low volatility, a relatively stable period"
	}
}
