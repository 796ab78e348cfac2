package common

import (
	"strings"
	"time"
	"unicode"
)

// DateLayout is the calendar-day key used by every day-bucketed store.
const DateLayout = "2006-01-02"

// hasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// HasAll returns true if s contains every substring.
func HasAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// Normalize turns a free-text question into its lookup key: lower-cased,
// trimmed, with any trailing run of '?' removed.
func Normalize(q string) string {
	q = strings.ToLower(q)
	q = strings.TrimRightFunc(q, func(r rune) bool {
		return r == '?' || unicode.IsSpace(r)
	})
	return strings.TrimLeftFunc(q, unicode.IsSpace)
}

// ClockTime formats t the way every user-facing timestamp is printed, e.g. "(14:03:59)".
func ClockTime(t time.Time) string {
	return "(" + t.Format("15:04:05") + ")"
}

// DayKey returns the calendar-day key of t in its own location.
func DayKey(t time.Time) string {
	return t.Format(DateLayout)
}
