// Package isotime formats and parses naive ISO-8601 timestamps. JSON
// responses use the extended form; auth tokens use the basic form because the
// extended form contains the token field separator. Values carry no zone
// suffix and are always interpreted as UTC.
package isotime

import (
	"errors"
	"fmt"
	"time"
)

const (
	layoutSeconds = "2006-01-02T15:04:05"
	layoutMicros  = "2006-01-02T15:04:05.000000"

	layoutBasic       = "20060102T150405"
	layoutBasicMicros = "20060102T150405.000000"
)

// ErrInvalid signals a value that is not a zone-less ISO-8601 timestamp.
var ErrInvalid = errors.New("isotime: invalid timestamp")

// parseLayouts are tried in order. Fractional seconds are accepted after the
// seconds field by time.Parse even though the layouts do not spell them out.
var parseLayouts = []string{
	layoutSeconds,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15",
	time.DateOnly,
}

// Format renders t in UTC with microsecond precision. The fractional part is
// omitted when it is zero.
func Format(t time.Time) string {
	t = t.UTC().Truncate(time.Microsecond)
	if t.Nanosecond() == 0 {
		return t.Format(layoutSeconds)
	}
	return t.Format(layoutMicros)
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Parse reads a zone-less timestamp as UTC. Values carrying a zone offset or a
// trailing "Z" are rejected.
func Parse(s string) (time.Time, error) {
	for _, layout := range parseLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalid, s)
}

// FormatBasic renders t like Format but in ISO-8601 basic format, which
// contains no colons.
func FormatBasic(t time.Time) string {
	t = t.UTC().Truncate(time.Microsecond)
	if t.Nanosecond() == 0 {
		return t.Format(layoutBasic)
	}
	return t.Format(layoutBasicMicros)
}

// ParseBasic reads a value produced by FormatBasic.
func ParseBasic(s string) (time.Time, error) {
	t, err := time.Parse(layoutBasic, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return t, nil
}
