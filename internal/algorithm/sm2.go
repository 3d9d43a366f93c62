package algorithm

import (
	"math"

	"github.com/oracleot/algos-mastery-sub001/internal/models"
)

// Default settings for new review states
const (
	InitialEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// State is the scheduling triple the SM-2 step function operates on.
type State struct {
	EaseFactor  float64
	Interval    int // days
	Repetitions int
}

// NewState returns the state for a freshly enrolled problem: default
// ease, zero interval, zero repetitions.
func NewState() State {
	return State{EaseFactor: InitialEaseFactor}
}

// ComputeNext applies one SM-2 review step and returns the next state.
// It is pure and total: identical inputs always produce identical
// outputs, and every documented input has a defined result. Validation
// of the rating happens at the engine boundary, not here.
//
// quality < 3 is a lapse: repetitions reset to 0 and the interval drops
// back to 1 day. Otherwise repetitions increment and the interval
// follows the 1, 6, round(prior * ease') progression.
func ComputeNext(quality models.Rating, prior State) State {
	// EF' = EF + (0.1 - (5-q) * (0.08 + (5-q)*0.02)), floored at 1.3.
	// For quality 0 this is a fixed -0.8 penalty.
	q := float64(quality)
	ease := prior.EaseFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if ease < MinEaseFactor {
		ease = MinEaseFactor
	}

	next := State{EaseFactor: ease}

	if quality < 3 {
		next.Repetitions = 0
		next.Interval = 1
		return next
	}

	next.Repetitions = prior.Repetitions + 1
	switch next.Repetitions {
	case 1:
		next.Interval = 1
	case 2:
		next.Interval = 6
	default:
		next.Interval = int(math.Round(float64(prior.Interval) * ease))
	}
	return next
}

// Preview returns the interval each rating would produce from the prior
// state, without persisting anything. Used for hints on the rating
// prompt ("Hard -> 3d").
func Preview(prior State) map[models.Rating]int {
	out := make(map[models.Rating]int, len(models.Ratings))
	for _, r := range models.Ratings {
		out[r] = ComputeNext(r, prior).Interval
	}
	return out
}
