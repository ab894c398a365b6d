package cal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Snapshot represents the raw JSON response from the CAL unit-trust rates
// API for a single calendar date. The upstream returns either the fund
// collection or a top-level error field:
//
//	{ "UTMS_FUND": [ { "FUND_NAME": "...", "OLD_PRICE": 123.45 }, ... ] }
//	{ "error": "..." }
//
// A fund absent from a given day's snapshot simply contributes no data point
// for that date.
type Snapshot struct {
	Funds []FundEntry `json:"UTMS_FUND"`
	Err   string      `json:"error,omitempty"`
}

// FundEntry is one fund's listing within a daily snapshot.
type FundEntry struct {
	FundName string `json:"FUND_NAME"`
	OldPrice Price  `json:"OLD_PRICE"`
}

// Price is a unit price that the upstream encodes either as a JSON number
// or as a numeric string. Decoding is defensive: both forms are accepted.
type Price float64

// UnmarshalJSON implements json.Unmarshaler for both wire encodings.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*p = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode price string: %w", err)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("failed to parse price %q: %w", s, err)
		}
		*p = Price(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("failed to decode price: %w", err)
	}
	*p = Price(v)
	return nil
}

// PriceFor returns the unit price for the named fund within this snapshot.
// The second return is false when the fund is not listed for that day or
// carries a non-positive price.
func (s Snapshot) PriceFor(fundName string) (float64, bool) {
	for _, entry := range s.Funds {
		if entry.FundName == fundName {
			if entry.OldPrice <= 0 {
				return 0, false
			}
			return float64(entry.OldPrice), true
		}
	}
	return 0, false
}
