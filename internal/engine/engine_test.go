package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oracleot/algos-mastery-sub001/internal/dates"
	"github.com/oracleot/algos-mastery-sub001/internal/db"
	"github.com/oracleot/algos-mastery-sub001/internal/models"
)

var testNow = time.Date(2024, 6, 20, 15, 0, 0, 0, time.Local)

func newTestEngine(t *testing.T) (*Engine, *db.Store) {
	t.Helper()
	store, err := db.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store, nil, WithClock(func() time.Time { return testNow })), store
}

func addProblem(t *testing.T, store *db.Store, name string) int {
	t.Helper()
	id, err := store.AddProblem(context.Background(), models.Problem{Name: name, Difficulty: 3})
	require.NoError(t, err)
	return id
}

func seedState(t *testing.T, store *db.Store, st models.ReviewState) {
	t.Helper()
	require.NoError(t, store.WithTx(context.Background(), func(tx *db.Tx) error {
		return tx.PutReviewState(context.Background(), st)
	}))
}

func TestRecordReviewFirstRatingEnrolls(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	id := addProblem(t, store, "Two Sum")

	st, err := e.RecordReview(ctx, id, models.Good)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Repetitions)
	assert.Equal(t, 1, st.Interval)
	assert.Equal(t, 2.5, st.EaseFactor)
	assert.True(t, st.NextReview.Equal(dates.AddDays(dates.StartOfDay(testNow), 1)))

	entries, err := store.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].IntervalBefore)
	assert.Equal(t, 1, entries[0].IntervalAfter)
	assert.Equal(t, models.Good, entries[0].Quality)
}

func TestRecordReviewProgression(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	id := addProblem(t, store, "Two Sum")

	var st *models.ReviewState
	var err error
	for i := 0; i < 3; i++ {
		st, err = e.RecordReview(ctx, id, models.Good)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, st.Repetitions)
	assert.Equal(t, 15, st.Interval)
	assert.True(t, st.NextReview.Equal(dates.AddDays(dates.StartOfDay(testNow), 15)))

	entries, err := store.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 6, entries[2].IntervalBefore)
	assert.Equal(t, 15, entries[2].IntervalAfter)
}

func TestRecordReviewAgainResets(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	id := addProblem(t, store, "Two Sum")

	for i := 0; i < 3; i++ {
		_, err := e.RecordReview(ctx, id, models.Good)
		require.NoError(t, err)
	}
	st, err := e.RecordReview(ctx, id, models.Again)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Repetitions)
	assert.Equal(t, 1, st.Interval)
	assert.GreaterOrEqual(t, st.EaseFactor, 1.3)
}

func TestRecordReviewRejectsInvalidRating(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	id := addProblem(t, store, "Two Sum")

	touched := 0
	store.Subscribe(func(db.Change) { touched++ })

	// 1 and 2 sit in the scale's gap; 7 is outside it entirely
	for _, q := range []models.Rating{1, 2, 7, -1} {
		_, err := e.RecordReview(ctx, id, q)
		assert.ErrorIs(t, err, ErrInvalidRating, "rating %d", q)
	}

	assert.Zero(t, touched, "invalid ratings must not reach the store")
	st, err := store.GetReviewState(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestAddToReview(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	id := addProblem(t, store, "Two Sum")

	st, err := e.AddToReview(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2.5, st.EaseFactor)
	assert.Equal(t, 0, st.Interval)
	assert.Equal(t, 0, st.Repetitions)
	assert.True(t, st.NextReview.Equal(testNow), "immediately due")

	entries, err := store.ListHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries, "enrollment is not a review event")

	_, err = e.AddToReview(ctx, id)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestRecordReviewUnknownProblem(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)

	_, err := e.RecordReview(ctx, 404, models.Good)
	assert.ErrorIs(t, err, ErrProblemNotFound)

	// no orphan state and no history entry to inflate streak/stats
	st, err := store.GetReviewState(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, st)
	entries, err := store.ListHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAddToReviewUnknownProblem(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.AddToReview(context.Background(), 404)
	assert.ErrorIs(t, err, ErrProblemNotFound)
}

func TestAddToTodayQueue(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	id := addProblem(t, store, "Two Sum")

	seedState(t, store, models.ReviewState{
		ProblemID:   id,
		EaseFactor:  2.36,
		Interval:    12,
		Repetitions: 4,
		NextReview:  dates.AddDays(testNow, 9),
		EnrolledAt:  testNow.AddDate(0, 0, -30),
	})

	require.NoError(t, e.AddToTodayQueue(ctx, id))

	st, err := store.GetReviewState(ctx, id)
	require.NoError(t, err)
	assert.True(t, dates.SameDay(st.NextReview, testNow))
	// scheduling fields untouched
	assert.Equal(t, 2.36, st.EaseFactor)
	assert.Equal(t, 12, st.Interval)
	assert.Equal(t, 4, st.Repetitions)

	entries, err := store.ListHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAddToTodayQueueNotEnrolled(t *testing.T) {
	e, store := newTestEngine(t)
	id := addProblem(t, store, "Two Sum")
	err := e.AddToTodayQueue(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestDueTodayOrderingAndCutoff(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)

	mk := func(name string, dueOffsetDays int) int {
		id := addProblem(t, store, name)
		seedState(t, store, models.ReviewState{
			ProblemID:  id,
			EaseFactor: 2.5,
			NextReview: dates.AddDays(testNow, dueOffsetDays),
			EnrolledAt: testNow,
		})
		return id
	}

	yesterday := mk("due yesterday", -1)
	twoAgo := mk("due two days ago", -2)
	today := mk("due today", 0)
	mk("due tomorrow", 1)

	due, err := e.DueToday(ctx)
	require.NoError(t, err)
	require.Len(t, due, 3, "tomorrow's item is not due")
	assert.Equal(t, twoAgo, due[0].Problem.ID, "most overdue first")
	assert.Equal(t, yesterday, due[1].Problem.ID)
	assert.Equal(t, today, due[2].Problem.ID)
}

func TestDueTodayTieBreakByEnrollment(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)

	first := addProblem(t, store, "first enrolled")
	second := addProblem(t, store, "second enrolled")
	for i, id := range []int{first, second} {
		seedState(t, store, models.ReviewState{
			ProblemID:  id,
			EaseFactor: 2.5,
			NextReview: dates.AddDays(testNow, -1),
			EnrolledAt: testNow.Add(time.Duration(i) * time.Minute),
		})
	}

	due, err := e.DueToday(ctx)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, first, due[0].Problem.ID)
	assert.Equal(t, second, due[1].Problem.ID)
}

func TestDueTodayExcludesDeletedProblems(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)

	keep := addProblem(t, store, "kept")
	gone := addProblem(t, store, "deleted")
	for _, id := range []int{keep, gone} {
		seedState(t, store, models.ReviewState{
			ProblemID:  id,
			EaseFactor: 2.5,
			NextReview: testNow,
			EnrolledAt: testNow,
		})
	}
	require.NoError(t, store.DeleteProblem(ctx, gone))

	due, err := e.DueToday(ctx)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, keep, due[0].Problem.ID)
}

func TestPreviewIntervalsDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	id := addProblem(t, store, "Two Sum")

	seedState(t, store, models.ReviewState{
		ProblemID:   id,
		EaseFactor:  2.5,
		Interval:    6,
		Repetitions: 2,
		NextReview:  testNow,
		EnrolledAt:  testNow,
	})

	preview, err := e.PreviewIntervals(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, preview[models.Again])
	assert.Equal(t, 15, preview[models.Good]) // round(6 * 2.5)

	st, err := store.GetReviewState(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 6, st.Interval, "preview must not mutate state")

	entries, err := store.ListHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPreviewIntervalsUnenrolledUsesDefaults(t *testing.T) {
	e, store := newTestEngine(t)
	id := addProblem(t, store, "Two Sum")

	preview, err := e.PreviewIntervals(context.Background(), id)
	require.NoError(t, err)
	for _, r := range models.Ratings {
		assert.Equal(t, 1, preview[r])
	}
}

func TestStreakAndWeeklyThroughEngine(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	id := addProblem(t, store, "Two Sum")

	require.NoError(t, store.WithTx(ctx, func(tx *db.Tx) error {
		for _, daysAgo := range []int{0, 1, 2, 9} {
			_, err := tx.AppendHistory(ctx, models.ReviewHistoryEntry{
				ProblemID:  id,
				Quality:    models.Good,
				ReviewedAt: testNow.AddDate(0, 0, -daysAgo),
			})
			if err != nil {
				return err
			}
		}
		return nil
	}))

	streak, err := e.Streak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, streak.Current)
	assert.True(t, streak.ReviewedToday)

	weekly, err := e.WeeklyStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, weekly.Total, "the 9-days-ago entry is outside the window")
	require.Len(t, weekly.Days, 7)
	assert.Equal(t, 1, weekly.Days[6].Reviewed)
}

func TestInitialEaseOption(t *testing.T) {
	ctx := context.Background()
	store, err := db.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	e := New(store, nil,
		WithClock(func() time.Time { return testNow }),
		WithInitialEase(2.2),
	)
	id := addProblem(t, store, "Two Sum")

	st, err := e.AddToReview(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2.2, st.EaseFactor)
}
