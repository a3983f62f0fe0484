// Package shared holds small helpers used across modules.
package shared

import (
	"fmt"
	"time"
)

// DayFormat is the wire format for calendar dates.
const DayFormat = "2006-01-02"

// ParseDay parses an ISO-8601 date, accepting either a plain day or a full
// timestamp, and truncates it to midnight UTC.
func ParseDay(s string) (time.Time, error) {
	if t, err := time.Parse(DayFormat, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return TruncateDay(t), nil
}

// TruncateDay returns the midnight UTC instant of t's day.
func TruncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayRange returns the half-open interval [day, day+24h) used by all
// day-scoped queries.
func DayRange(day time.Time) (time.Time, time.Time) {
	start := TruncateDay(day)
	return start, start.Add(24 * time.Hour)
}
