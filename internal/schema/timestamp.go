package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimestamp is returned when a string matches none of the accepted timestamp layouts.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// TimestampLayouts are tried in order by ParseTimestamp. Layouts without a zone are read as UTC.
// A fractional second is accepted after the seconds field of every layout that has one.
var TimestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp converts a literal into an absolute time. Besides the layouts in
// TimestampLayouts, a bare integer is read as milliseconds since the Unix epoch.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty string", ErrInvalidTimestamp)
	}
	for _, layout := range TimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if millis, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(millis).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// FormatTimestamp renders t in the first accepted layout, so that
// ParseTimestamp(FormatTimestamp(t)) keeps millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05.000")
}
