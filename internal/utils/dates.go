package utils

import (
	"time"
)

// SonarQube date formats, as produced by the Web API
const (
	SQDateTimeFormat = "2006-01-02T15:04:05-0700"
	SQDateFormat     = "2006-01-02"
)

// ParseDate parses a SonarQube datetime string. Date-only strings are
// accepted as a fallback.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(SQDateTimeFormat, s); err == nil {
		return t, nil
	}
	return time.Parse(SQDateFormat, s)
}

// FormatDate renders a timestamp in the SonarQube datetime format,
// or date-only when withTime is false. The zero time renders empty.
func FormatDate(t time.Time, withTime bool) string {
	if t.IsZero() {
		return ""
	}
	if withTime {
		return t.Format(SQDateTimeFormat)
	}
	return t.Format(SQDateFormat)
}
