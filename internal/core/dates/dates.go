// Package dates parses the mixed date representations found in upstream data.
// Parsing never fails loudly: anything unparseable becomes the zero time.Time,
// which sorts before every valid instant.
package dates

import (
	"strconv"
	"strings"
	"time"
)

// isoLayouts are tried in order for the non day/month/year form.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// Parse parses s as day/month/year when it contains "/", otherwise as an ISO-like timestamp.
func Parse(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if strings.Contains(s, "/") {
		return ParseDayMonthYear(s)
	}
	return ParseISO(s)
}

// ParseDayMonthYear parses "DD/MM/YYYY".
// Requires exactly three numeric parts, day in [1,31], month in [1,12] and year >= 1900.
func ParseDayMonthYear(s string) time.Time {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}
		}
		nums[i] = n
	}

	day, month, year := nums[0], nums[1], nums[2]
	if day < 1 || day > 31 || month < 1 || month > 12 || year < 1900 {
		return time.Time{}
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// ParseISO parses generated timestamps. Layouts without a zone are read as UTC.
func ParseISO(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Valid reports whether t is a parsed instant rather than the unparseable sentinel.
func Valid(t time.Time) bool {
	return !t.IsZero()
}
