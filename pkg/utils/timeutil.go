package utils

import (
	"fmt"
	"iter"
	"strings"
	"time"
)

// DayLayout is the calendar day format used in configs, filenames and
// summary keys.
const DayLayout = "2006-01-02"

// ParseDay parses a "2006-01-02" string as midnight UTC. Surrounding
// whitespace is ignored; an empty string yields the zero time.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("want YYYY-MM-DD, got %q", s)
	}
	return t, nil
}

// FormatDay formats t as its UTC calendar day. The zero time formats as "".
func FormatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DayLayout)
}

// StartOfDay returns midnight UTC of t's UTC day.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// InWindow reports whether t falls on a UTC day within [from, to]. Both
// bounds are whole days and inclusive; a zero bound is open.
func InWindow(t, from, to time.Time) bool {
	d := StartOfDay(t)
	if !from.IsZero() && d.Before(StartOfDay(from)) {
		return false
	}
	if !to.IsZero() && d.After(StartOfDay(to)) {
		return false
	}
	return true
}

// DaysBetween returns the number of calendar days in [from, to], counting
// both ends. It is 0 when either bound is zero or to precedes from.
func DaysBetween(from, to time.Time) int {
	if from.IsZero() || to.IsZero() {
		return 0
	}
	a, b := StartOfDay(from), StartOfDay(to)
	if b.Before(a) {
		return 0
	}
	return int(b.Sub(a).Hours()/24) + 1
}

// Days yields every UTC day in [from, to].
func Days(from, to time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if from.IsZero() || to.IsZero() {
			return
		}
		for d := StartOfDay(from); !d.After(StartOfDay(to)); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}
}
