package model

// FetchState identifies the phase a fetch operation is in. States advance
// monotonically: Idle, ComputingGaps, Fetching, Committing, then Done or
// PartialFailure.
type FetchState string

const (
	FetchIdle           FetchState = "idle"
	FetchComputingGaps  FetchState = "computing_gaps"
	FetchFetching       FetchState = "fetching"
	FetchCommitting     FetchState = "committing"
	FetchDone           FetchState = "done"
	FetchPartialFailure FetchState = "partial_failure"
)

// FetchProgress is reported to an optional observer between individual date
// fetches. Index is 1-based; Total is the number of missing dates.
type FetchProgress struct {
	State FetchState `json:"state"`
	Index int        `json:"index"`
	Total int        `json:"total"`
	Date  string     `json:"date,omitempty"`
}

// FetchReport is the terminal result of an EnsureRange operation. A non-zero
// ErrorCount with a committed remainder is a successful-with-warnings
// outcome, not a failure: Partial is advisory.
type FetchReport struct {
	Fund         string     `json:"fund"`
	State        FetchState `json:"state"`
	FetchedCount int        `json:"fetchedCount"`
	ErrorCount   int        `json:"errorCount"`
	TotalPoints  int        `json:"totalPoints"`
	Partial      bool       `json:"partial"`

	// FetchedPoints is populated only when the commit fails: the points were
	// obtained upstream but are not durably cached, and can be re-saved
	// without repeating any upstream call.
	FetchedPoints []PricePoint `json:"fetchedPoints,omitempty"`
}
