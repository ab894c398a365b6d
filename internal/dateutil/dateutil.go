// Package dateutil provides calendar-date helpers for the daily price
// series. All dates are normalized to midnight UTC; the canonical string
// form is ISO "2006-01-02", whose lexicographic order matches chronological
// order.
package dateutil

import (
	"fmt"
	"regexp"
	"time"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/apperrors"
)

// ISODate is the canonical date layout used throughout the application.
const ISODate = "2006-01-02"

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate parses a date string in "2006-01-02" or RFC3339 format and
// normalizes it to midnight UTC.
func ParseDate(str string) (time.Time, error) {
	t, err := time.Parse(ISODate, str)
	if err != nil {
		t, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidDate, str)
		}
	}
	return Normalize(t), nil
}

// FormatDate renders a time in the canonical ISO form.
func FormatDate(t time.Time) string {
	return t.UTC().Format(ISODate)
}

// Normalize truncates a time to midnight UTC.
func Normalize(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsValidDate reports whether str is a strict 4-2-2 digit date string that
// denotes a real calendar date. "2024-02-30" and "2024-1-5" are both
// rejected.
func IsValidDate(str string) bool {
	if !isoDatePattern.MatchString(str) {
		return false
	}
	t, err := time.Parse(ISODate, str)
	if err != nil {
		return false
	}
	// time.Parse accepts only in-range components for this layout, but keep
	// the round-trip check so a non-canonical match can never slip through.
	return t.Format(ISODate) == str
}

// Generate returns the sequence of sample dates from start to end inclusive
// of start, advancing by strideDays each step and never exceeding end.
// Returns apperrors.ErrInvalidRange when start is after end or the stride is
// below one day.
func Generate(start, end time.Time, strideDays int) ([]time.Time, error) {
	if strideDays < 1 {
		return nil, fmt.Errorf("%w: stride must be at least 1 day, got %d", apperrors.ErrInvalidRange, strideDays)
	}
	start = Normalize(start)
	end = Normalize(end)
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s is after end %s",
			apperrors.ErrInvalidRange, FormatDate(start), FormatDate(end))
	}

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, strideDays) {
		dates = append(dates, d)
	}
	return dates, nil
}

// Today returns the current date at midnight UTC.
func Today() time.Time {
	return Normalize(time.Now())
}

// Yesterday returns the previous calendar date at midnight UTC.
func Yesterday() time.Time {
	return DaysAgo(1)
}

// DaysAgo returns the date n days before today.
func DaysAgo(n int) time.Time {
	return Today().AddDate(0, 0, -n)
}

// MonthsAgo returns the date n months before today.
func MonthsAgo(n int) time.Time {
	return Today().AddDate(0, -n, 0)
}

// YearsAgo returns the date n years before today.
func YearsAgo(n int) time.Time {
	return Today().AddDate(-n, 0, 0)
}

// DaysBetween returns the absolute number of whole days between two dates.
func DaysBetween(a, b time.Time) int {
	diff := Normalize(b).Sub(Normalize(a))
	if diff < 0 {
		diff = -diff
	}
	return int(diff / (24 * time.Hour))
}

// InRange reports whether d falls within [start, end] inclusive.
func InRange(d, start, end time.Time) bool {
	d = Normalize(d)
	return !d.Before(Normalize(start)) && !d.After(Normalize(end))
}
