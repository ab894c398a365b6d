package analysis

import (
	"time"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/dateutil"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/model"
)

// DefaultEvents is the static catalog of Sri Lankan macro events relevant
// to unit-trust performance. Impact levels: High, Medium, Low.
var DefaultEvents = []model.MarketEvent{
	{Date: mustDate("2022-03-01"), Description: "Sri Lanka economic crisis begins", Impact: "High"},
	{Date: mustDate("2022-04-01"), Description: "Sri Lanka defaults on foreign debt", Impact: "High"},
	{Date: mustDate("2022-07-01"), Description: "IMF bailout negotiations begin", Impact: "Medium"},
	{Date: mustDate("2023-03-01"), Description: "IMF approves $3 billion bailout package", Impact: "High"},
	{Date: mustDate("2023-09-01"), Description: "Central Bank policy rate adjustments", Impact: "Medium"},
	{Date: mustDate("2024-01-01"), Description: "Economic recovery measures implemented", Impact: "Medium"},
	{Date: mustDate("2024-06-01"), Description: "Tourism sector recovery", Impact: "Low"},
}

// ContextualEvents filters a catalog of dated events to those whose date
// falls within [start, end] inclusive, preserving catalog order.
func ContextualEvents(start, end time.Time, catalog []model.MarketEvent) []model.MarketEvent {
	events := []model.MarketEvent{}
	for _, event := range catalog {
		if dateutil.InRange(event.Date, start, end) {
			events = append(events, event)
		}
	}
	return events
}

func mustDate(s string) time.Time {
	t, err := dateutil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}
