package request

// FetchPricesRequest is the body of POST /api/fund/{name}/fetch. The window
// is inclusive; IntervalDays controls the sampling stride and defaults to
// daily when zero. Confirmed acknowledges the upstream calls the fetch will
// make; an unconfirmed request is answered with the gap size instead of
// fetching.
type FetchPricesRequest struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	IntervalDays int    `json:"intervalDays"`
	Confirmed    bool   `json:"confirmed"`
}
