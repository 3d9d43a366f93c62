package backup

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oracleot/algos-mastery-sub001/internal/db"
	"github.com/oracleot/algos-mastery-sub001/internal/models"
)

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	s, err := db.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, store *db.Store) {
	t.Helper()
	ctx := context.Background()

	id, err := store.AddProblem(ctx, models.Problem{
		Name:       "Two Sum",
		URL:        "https://leetcode.com/problems/two-sum",
		Difficulty: 2,
		Tags:       []models.Tag{{Name: "array"}},
	})
	require.NoError(t, err)

	now := time.Date(2024, 6, 20, 22, 30, 0, 0, time.Local)
	require.NoError(t, store.WithTx(ctx, func(tx *db.Tx) error {
		st := models.ReviewState{
			ProblemID:   id,
			EaseFactor:  2.36,
			Interval:    6,
			Repetitions: 2,
			NextReview:  now.AddDate(0, 0, 6),
			EnrolledAt:  now.AddDate(0, 0, -10),
		}
		if err := tx.PutReviewState(ctx, st); err != nil {
			return err
		}
		_, err := tx.AppendHistory(ctx, models.ReviewHistoryEntry{
			ProblemID:      id,
			Quality:        models.Hard,
			ReviewedAt:     now,
			IntervalBefore: 1,
			IntervalAfter:  6,
		})
		return err
	}))
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)
	seed(t, src)

	exported, err := Export(ctx, src)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, exported.Write(&buf))
	assert.Contains(t, buf.String(), "reviewed_at", "dates travel as named JSON fields")

	decoded, err := Read(&buf)
	require.NoError(t, err)

	dst := newTestStore(t)
	require.NoError(t, Import(ctx, dst, decoded))

	reExported, err := Export(ctx, dst)
	require.NoError(t, err)

	require.Len(t, reExported.Problems, 1)
	assert.Equal(t, exported.Problems, reExported.Problems)

	require.Len(t, reExported.ReviewStates, 1)
	orig, got := exported.ReviewStates[0], reExported.ReviewStates[0]
	assert.Equal(t, orig.ProblemID, got.ProblemID)
	assert.Equal(t, orig.EaseFactor, got.EaseFactor)
	assert.Equal(t, orig.Interval, got.Interval)
	assert.Equal(t, orig.Repetitions, got.Repetitions)
	assert.True(t, got.NextReview.Equal(orig.NextReview))
	assert.True(t, got.EnrolledAt.Equal(orig.EnrolledAt))

	require.Len(t, reExported.ReviewHistory, 1)
	he, hg := exported.ReviewHistory[0], reExported.ReviewHistory[0]
	assert.Equal(t, he.ID, hg.ID)
	assert.Equal(t, he.Quality, hg.Quality)
	assert.Equal(t, he.IntervalBefore, hg.IntervalBefore)
	assert.Equal(t, he.IntervalAfter, hg.IntervalAfter)
	assert.True(t, hg.ReviewedAt.Equal(he.ReviewedAt))
}

func TestReadRejectsBadJSON(t *testing.T) {
	_, err := Read(strings.NewReader("{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestReadRejectsNonArrayCollections(t *testing.T) {
	payload := `{"version":1,"problems":{"id":1},"review_states":[],"review_history":[]}`
	_, err := Read(strings.NewReader(payload))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"problems" must be an array`)
}

func TestReadRejectsMissingCollection(t *testing.T) {
	payload := `{"version":1,"problems":[],"review_states":[]}`
	_, err := Read(strings.NewReader(payload))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"review_history"`)
}

func TestReadRejectsWrongVersion(t *testing.T) {
	payload := `{"version":99,"problems":[],"review_states":[],"review_history":[]}`
	_, err := Read(strings.NewReader(payload))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported backup version")
}

func TestReadRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantMsg string
	}{
		{
			"ease below floor",
			`{"version":1,"problems":[],"review_history":[],
			  "review_states":[{"problem_id":1,"ease_factor":1.1,"interval":1,"repetitions":0,
			    "next_review":"2024-06-20T00:00:00Z","enrolled_at":"2024-06-01T00:00:00Z"}]}`,
			"below the 1.3 floor",
		},
		{
			"negative interval",
			`{"version":1,"problems":[],"review_history":[],
			  "review_states":[{"problem_id":1,"ease_factor":2.5,"interval":-3,"repetitions":0,
			    "next_review":"2024-06-20T00:00:00Z","enrolled_at":"2024-06-01T00:00:00Z"}]}`,
			"negative interval",
		},
		{
			"quality in the scale gap",
			`{"version":1,"problems":[],"review_states":[],
			  "review_history":[{"id":1,"problem_id":1,"quality":2,
			    "reviewed_at":"2024-06-20T00:00:00Z","interval_before":0,"interval_after":1}]}`,
			"invalid quality",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tc.payload))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestImportReplacesExistingData(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seed(t, store)

	empty := &Payload{
		Version:       Version,
		Problems:      []models.Problem{},
		ReviewStates:  []models.ReviewState{},
		ReviewHistory: []models.ReviewHistoryEntry{},
	}
	require.NoError(t, Import(ctx, store, empty))

	problems, err := store.ListProblems(ctx)
	require.NoError(t, err)
	assert.Empty(t, problems)

	history, err := store.ListHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}
