package model

import "time"

// Summary holds basic descriptive statistics over a price series window.
type Summary struct {
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
	Mean           float64 `json:"mean"`
	First          float64 `json:"first"`
	Last           float64 `json:"last"`
	TotalReturnPct float64 `json:"totalReturnPct"`
	Count          int     `json:"count"`
}

// TrendDirection classifies the sign of a fitted price trend.
type TrendDirection string

const (
	TrendUp       TrendDirection = "Up"
	TrendDown     TrendDirection = "Down"
	TrendSideways TrendDirection = "Sideways"
)

// Trend is the result of an ordinary least-squares fit of price against
// position index. StrengthPct expresses the per-step slope as a percentage
// of the mean price.
type Trend struct {
	Direction   TrendDirection `json:"direction"`
	Slope       float64        `json:"slope"`
	StrengthPct float64        `json:"strengthPct"`
	Description string         `json:"description"`
}

// Movement is a consecutive-pair price change whose magnitude met the
// significance threshold.
type Movement struct {
	Date      time.Time `json:"date"`
	FromPrice float64   `json:"fromPrice"`
	ToPrice   float64   `json:"toPrice"`
	ChangePct float64   `json:"changePct"`
	Direction string    `json:"direction"`
}

// MarketEvent is a dated contextual event from the static macro catalog.
type MarketEvent struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Impact      string    `json:"impact"`
}

// AnalysisResult is the full derived view over a price series window.
// It is computed on demand and never persisted.
type AnalysisResult struct {
	Fund          string        `json:"fund"`
	StartDate     time.Time     `json:"startDate"`
	EndDate       time.Time     `json:"endDate"`
	Summary       Summary       `json:"summary"`
	VolatilityPct float64       `json:"volatilityPct"`
	Trend         Trend         `json:"trend"`
	Movements     []Movement    `json:"movements"`
	Events        []MarketEvent `json:"events"`
	Insights      []string      `json:"insights"`
}

// PeriodComparison contrasts two independently summarized windows.
type PeriodComparison struct {
	PeriodA       Summary `json:"periodA"`
	PeriodB       Summary `json:"periodB"`
	ReturnDiffPct float64 `json:"returnDiffPct"`
	MeanDiff      float64 `json:"meanDiff"`
}
