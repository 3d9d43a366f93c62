// Package engine orchestrates review transitions: it owns the atomic
// record-review cycle and the derived due-queue, streak and stats
// views. All date handling is local-calendar-day.
package engine

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/oracleot/algos-mastery-sub001/internal/algorithm"
	"github.com/oracleot/algos-mastery-sub001/internal/dates"
	"github.com/oracleot/algos-mastery-sub001/internal/db"
	"github.com/oracleot/algos-mastery-sub001/internal/models"
	"github.com/oracleot/algos-mastery-sub001/internal/stats"
)

var (
	ErrInvalidRating   = errors.New("invalid rating: must be again, hard, good or easy")
	ErrProblemNotFound = errors.New("problem not found")
	ErrNotEnrolled     = errors.New("problem is not enrolled in review")
	ErrAlreadyEnrolled = errors.New("problem is already enrolled in review")
)

// Engine is the review transition engine. It holds an explicit store
// handle; nothing here reaches for global state.
type Engine struct {
	store       *db.Store
	logger      *slog.Logger
	initialEase float64
	now         func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's notion of "now". Day-boundary
// behavior is tested through this.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithInitialEase overrides the ease factor given to newly enrolled
// problems.
func WithInitialEase(ease float64) Option {
	return func(e *Engine) { e.initialEase = ease }
}

func New(store *db.Store, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		store:       store,
		logger:      logger,
		initialEase: algorithm.InitialEaseFactor,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecordReview applies one rating to a problem as a single atomic
// read-modify-write: load (or initialize) the state, run the SM-2 step,
// write the new state and append the history entry in one transaction.
// Enrollment and first rating can be the same call.
func (e *Engine) RecordReview(ctx context.Context, problemID int, quality models.Rating) (*models.ReviewState, error) {
	if !quality.Valid() {
		return nil, ErrInvalidRating
	}
	// a typoed id must not fabricate state or a history entry
	p, err := e.store.GetProblemByID(ctx, problemID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProblemNotFound
	}

	now := e.now()
	var updated models.ReviewState
	err = e.store.WithTx(ctx, func(tx *db.Tx) error {
		st, err := tx.GetReviewState(ctx, problemID)
		if err != nil {
			return err
		}
		if st == nil {
			st = &models.ReviewState{
				ProblemID:  problemID,
				EaseFactor: e.initialEase,
				NextReview: now,
				EnrolledAt: now,
			}
		}

		next := algorithm.ComputeNext(quality, algorithm.State{
			EaseFactor:  st.EaseFactor,
			Interval:    st.Interval,
			Repetitions: st.Repetitions,
		})

		updated = models.ReviewState{
			ProblemID:   problemID,
			EaseFactor:  next.EaseFactor,
			Interval:    next.Interval,
			Repetitions: next.Repetitions,
			NextReview:  dates.AddDays(dates.StartOfDay(now), next.Interval),
			EnrolledAt:  st.EnrolledAt,
		}
		if err := tx.PutReviewState(ctx, updated); err != nil {
			return err
		}
		_, err = tx.AppendHistory(ctx, models.ReviewHistoryEntry{
			ProblemID:      problemID,
			Quality:        quality,
			ReviewedAt:     now,
			IntervalBefore: st.Interval,
			IntervalAfter:  next.Interval,
		})
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "record review")
	}

	e.logger.Debug("review recorded",
		"problem", problemID, "quality", quality.String(),
		"interval", updated.Interval, "ease", updated.EaseFactor)
	return &updated, nil
}

// AddToReview enrolls a problem with default scheduling state, due
// immediately. Enrollment is not a review event: no history is written.
func (e *Engine) AddToReview(ctx context.Context, problemID int) (*models.ReviewState, error) {
	p, err := e.store.GetProblemByID(ctx, problemID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProblemNotFound
	}

	now := e.now()
	st := models.ReviewState{
		ProblemID:  problemID,
		EaseFactor: e.initialEase,
		NextReview: now,
		EnrolledAt: now,
	}
	err = e.store.WithTx(ctx, func(tx *db.Tx) error {
		existing, err := tx.GetReviewState(ctx, problemID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyEnrolled
		}
		return tx.PutReviewState(ctx, st)
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// AddToTodayQueue forces an enrolled problem to surface today without
// touching ease, interval or repetitions, and without a history entry.
// This is the user's explicit escape hatch.
func (e *Engine) AddToTodayQueue(ctx context.Context, problemID int) error {
	today := dates.StartOfDay(e.now())
	return e.store.WithTx(ctx, func(tx *db.Tx) error {
		st, err := tx.GetReviewState(ctx, problemID)
		if err != nil {
			return err
		}
		if st == nil {
			return ErrNotEnrolled
		}
		st.NextReview = today
		return tx.PutReviewState(ctx, *st)
	})
}

// PreviewIntervals returns the day-count each rating would schedule,
// computed against the problem's current stored state without
// persisting anything. An unenrolled problem previews from defaults,
// matching the enroll-on-first-rating behavior of RecordReview.
func (e *Engine) PreviewIntervals(ctx context.Context, problemID int) (map[models.Rating]int, error) {
	prior := algorithm.State{EaseFactor: e.initialEase}
	st, err := e.store.GetReviewState(ctx, problemID)
	if err != nil {
		return nil, err
	}
	if st != nil {
		prior = algorithm.State{
			EaseFactor:  st.EaseFactor,
			Interval:    st.Interval,
			Repetitions: st.Repetitions,
		}
	}
	return algorithm.Preview(prior), nil
}

// DueToday returns every enrolled problem whose next review falls on or
// before the end of the local day: most overdue first, enrollment order
// breaking ties. States whose problem was deleted are silently dropped.
func (e *Engine) DueToday(ctx context.Context) ([]models.DueItem, error) {
	items, err := e.store.ListEnrolled(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := dates.EndOfDay(e.now())
	due := items[:0:0]
	for _, it := range items {
		if !it.Review.NextReview.After(cutoff) {
			due = append(due, it)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return dates.DayKey(due[i].Review.NextReview).Before(dates.DayKey(due[j].Review.NextReview))
	})
	return due, nil
}

// Streak derives the current and longest consecutive-day streaks from
// the full history log.
func (e *Engine) Streak(ctx context.Context) (models.Streak, error) {
	entries, err := e.store.ListHistory(ctx)
	if err != nil {
		return models.Streak{}, err
	}
	return stats.Streak(entries, e.now()), nil
}

// WeeklyStats derives the 7-day rolling rating counts.
func (e *Engine) WeeklyStats(ctx context.Context) (models.WeeklyStats, error) {
	now := e.now()
	entries, err := e.store.ListHistorySince(ctx, dates.StartOfDay(dates.AddDays(now, -6)))
	if err != nil {
		return models.WeeklyStats{}, err
	}
	return stats.Weekly(entries, now), nil
}
