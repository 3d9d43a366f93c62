// Package dates normalizes timestamps to local calendar days. All
// due/streak/stats comparisons in the scheduler operate on day
// boundaries in the user's timezone, never on raw timestamps.
package dates

import "time"

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's calendar day. A review
// state is due when its next-review date is at or before this instant.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// AddDays moves t forward n calendar days, preserving time of day.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// SameDay reports whether a and b fall on the same calendar day, each
// in its own location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayKey collapses t to a location-independent key for its calendar
// day. Two timestamps on the same local day map to the same key even
// across a DST shift.
func DayKey(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a's day to b's
// day; negative when b precedes a. Using UTC-normalized keys keeps the
// count exact across DST transitions.
func DaysBetween(a, b time.Time) int {
	return int(DayKey(b).Sub(DayKey(a)).Hours() / 24)
}
