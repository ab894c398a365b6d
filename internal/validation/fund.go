package validation

import (
	"strings"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/api/request"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/dateutil"
)

// ValidateFundName checks a fund name taken from the URL path.
func ValidateFundName(name string) error {
	errors := make(map[string]string)

	if strings.TrimSpace(name) == "" {
		errors["name"] = "fund name is required"
	} else if len(name) > 100 {
		errors["name"] = "fund name must be 100 characters or less"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateFetchPrices checks the body of a fetch request. Window ordering is
// enforced by the service; this only vets formats and bounds.
func ValidateFetchPrices(req request.FetchPricesRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Start) == "" {
		errors["start"] = "start is required"
	} else if !dateutil.IsValidDate(req.Start) {
		errors["start"] = "start must be a valid YYYY-MM-DD date"
	}

	if strings.TrimSpace(req.End) == "" {
		errors["end"] = "end is required"
	} else if !dateutil.IsValidDate(req.End) {
		errors["end"] = "end must be a valid YYYY-MM-DD date"
	}

	if req.IntervalDays < 0 {
		errors["intervalDays"] = "intervalDays must not be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateDateParam checks an optional query-parameter date. Empty is
// allowed; a present value must be a valid calendar date.
func ValidateDateParam(field, value string) error {
	if value == "" {
		return nil
	}
	if !dateutil.IsValidDate(value) {
		return &Error{Fields: map[string]string{field: "must be a valid YYYY-MM-DD date"}}
	}
	return nil
}
