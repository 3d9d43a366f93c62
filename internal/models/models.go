package models

import "time"

// Problem represents a single practice item. The review engine reads
// problems but never mutates them; problem details are managed through
// the add/edit/delete commands.
type Problem struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	Notes      string `json:"notes"`
	Difficulty int    `json:"difficulty"` // 1-5
	Tags       []Tag  `json:"tags,omitempty"`
}

// Tag represents a category for a problem.
type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Rating is the quality of a review on the SM-2 0-5 scale. Only four
// values are reachable from the rating prompt; 1 and 2 are unused.
type Rating int

const (
	Again Rating = 0
	Hard  Rating = 3
	Good  Rating = 4
	Easy  Rating = 5
)

// Ratings lists the reachable ratings in prompt order (keys 1-4).
var Ratings = [4]Rating{Again, Hard, Good, Easy}

// Valid reports whether r is one of the four reachable ratings.
func (r Rating) Valid() bool {
	switch r {
	case Again, Hard, Good, Easy:
		return true
	}
	return false
}

func (r Rating) String() string {
	switch r {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	}
	return "unknown"
}

// ReviewState holds the per-problem scheduling state. NextReview is set
// on write only; it is never recomputed on read.
type ReviewState struct {
	ProblemID   int       `json:"problem_id"`
	EaseFactor  float64   `json:"ease_factor"` // >= 1.3
	Interval    int       `json:"interval"`    // days until next review
	Repetitions int       `json:"repetitions"` // consecutive non-Again reviews
	NextReview  time.Time `json:"next_review"`
	EnrolledAt  time.Time `json:"enrolled_at"`
}

// ReviewHistoryEntry is one rating event. Entries are append-only and
// immutable; their order by ReviewedAt is the audit trail the streak and
// stats calculators derive from.
type ReviewHistoryEntry struct {
	ID             int       `json:"id"`
	ProblemID      int       `json:"problem_id"`
	Quality        Rating    `json:"quality"`
	ReviewedAt     time.Time `json:"reviewed_at"`
	IntervalBefore int       `json:"interval_before"`
	IntervalAfter  int       `json:"interval_after"`
}

// DueItem pairs a due review state with its problem.
type DueItem struct {
	Problem Problem
	Review  ReviewState
}

// Streak summarizes consecutive-day review activity.
type Streak struct {
	Current        int
	Longest        int
	LastReviewDate time.Time // zero when there is no history
	ReviewedToday  bool
}

// DailyStats is one calendar-day bucket of review counts.
type DailyStats struct {
	Date     time.Time
	Reviewed int
	Again    int
	Hard     int
	Good     int
	Easy     int
}

// WeeklyStats covers today and the six preceding days, oldest first.
type WeeklyStats struct {
	Days         []DailyStats
	Total        int
	DailyAverage float64
}
