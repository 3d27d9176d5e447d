// Package utils holds small shared helpers with no project dependencies.
package utils

import (
	"fmt"
	"time"
)

// isoLayouts are tried in order when parsing provider timestamps. Providers
// mix full RFC 3339, zone-less datetimes, and bare dates.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseISOTimestamp parses an ISO 8601-ish timestamp into UTC. Zone-less
// values are interpreted as UTC.
func ParseISOTimestamp(value string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// IsDateOnly reports whether value is a bare date without a time component.
func IsDateOnly(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

// EndOfDay returns the last representable instant of t's day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// UTCNow returns the current time as an RFC 3339 UTC string.
func UTCNow() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
