// Package stats derives streaks and rolling weekly counts from the
// review history log. All functions are pure over a slice of history
// entries and an explicit "now", so the callers decide where the data
// and the clock come from.
package stats

import (
	"time"

	"github.com/oracleot/algos-mastery-sub001/internal/dates"
	"github.com/oracleot/algos-mastery-sub001/internal/models"
)

// Streak reduces the history to the set of distinct local calendar days
// with at least one review and computes the current and longest
// consecutive-day runs.
//
// The current streak survives one day of grace: if today has no review
// but yesterday does, the run ending yesterday still counts, with
// ReviewedToday false. Two or more quiet days break it to zero.
func Streak(entries []models.ReviewHistoryEntry, now time.Time) models.Streak {
	days := make(map[time.Time]bool, len(entries))
	var last time.Time
	for _, e := range entries {
		days[dates.DayKey(e.ReviewedAt)] = true
		if e.ReviewedAt.After(last) {
			last = e.ReviewedAt
		}
	}
	if len(days) == 0 {
		return models.Streak{}
	}

	today := dates.DayKey(now)
	cursor := today
	if !days[cursor] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	current := 0
	for days[cursor] {
		current++
		cursor = cursor.AddDate(0, 0, -1)
	}

	longest := 0
	for d := range days {
		if days[d.AddDate(0, 0, -1)] {
			continue // not the start of a run
		}
		run := 0
		for c := d; days[c]; c = c.AddDate(0, 0, 1) {
			run++
		}
		if run > longest {
			longest = run
		}
	}

	return models.Streak{
		Current:        current,
		Longest:        longest,
		LastReviewDate: last,
		ReviewedToday:  days[today],
	}
}

// Weekly buckets the history into exactly seven daily bins covering
// today and the six preceding local days, oldest first. Entries outside
// the window are dropped entirely; quiet days stay in as zero buckets.
// The daily average divides by seven regardless of how many days saw
// activity.
func Weekly(entries []models.ReviewHistoryEntry, now time.Time) models.WeeklyStats {
	start := dates.StartOfDay(dates.AddDays(now, -6))

	days := make([]models.DailyStats, 7)
	for i := range days {
		days[i] = models.DailyStats{Date: dates.AddDays(start, i)}
	}

	total := 0
	for _, e := range entries {
		idx := dates.DaysBetween(start, e.ReviewedAt)
		if idx < 0 || idx > 6 {
			continue
		}
		b := &days[idx]
		b.Reviewed++
		total++
		switch {
		case e.Quality < 3:
			b.Again++
		case e.Quality == models.Hard:
			b.Hard++
		case e.Quality == models.Good:
			b.Good++
		default:
			b.Easy++
		}
	}

	return models.WeeklyStats{
		Days:         days,
		Total:        total,
		DailyAverage: float64(total) / 7,
	}
}
