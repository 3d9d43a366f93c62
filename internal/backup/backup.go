// Package backup serializes the full tracking data to JSON and
// restores it. Dates travel as RFC 3339 strings and rehydrate to
// time.Time on import; each collection is validated before any write
// and restored all-or-nothing.
package backup

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/oracleot/algos-mastery-sub001/internal/db"
	"github.com/oracleot/algos-mastery-sub001/internal/models"
)

// Version is bumped when the payload layout changes incompatibly.
const Version = 1

// Payload is the on-disk backup format.
type Payload struct {
	Version       int                         `json:"version"`
	ExportedAt    time.Time                   `json:"exported_at"`
	Problems      []models.Problem            `json:"problems"`
	ReviewStates  []models.ReviewState        `json:"review_states"`
	ReviewHistory []models.ReviewHistoryEntry `json:"review_history"`
}

// Export snapshots every collection from the store.
func Export(ctx context.Context, store *db.Store) (*Payload, error) {
	problems, err := store.ListProblems(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "export problems")
	}
	states, err := store.ListReviewStates(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "export review states")
	}
	history, err := store.ListHistory(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "export history")
	}
	return &Payload{
		Version:       Version,
		ExportedAt:    time.Now(),
		Problems:      problems,
		ReviewStates:  states,
		ReviewHistory: history,
	}, nil
}

// Write encodes the payload as indented JSON.
func (p *Payload) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(p), "encode backup")
}

// rawPayload defers collection decoding so shape errors can name the
// offending collection instead of failing opaquely.
type rawPayload struct {
	Version       *int            `json:"version"`
	Problems      json.RawMessage `json:"problems"`
	ReviewStates  json.RawMessage `json:"review_states"`
	ReviewHistory json.RawMessage `json:"review_history"`
}

// Read decodes and validates a backup payload. No store access: a bad
// file is rejected before anything is written.
func Read(r io.Reader) (*Payload, error) {
	var raw rawPayload
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "backup file is not valid JSON")
	}
	if raw.Version == nil {
		return nil, errors.New("backup file is missing the version field")
	}
	if *raw.Version != Version {
		return nil, errors.Errorf("unsupported backup version %d (expected %d)", *raw.Version, Version)
	}

	p := &Payload{Version: *raw.Version}
	if err := decodeCollection(raw.Problems, "problems", &p.Problems); err != nil {
		return nil, err
	}
	if err := decodeCollection(raw.ReviewStates, "review_states", &p.ReviewStates); err != nil {
		return nil, err
	}
	if err := decodeCollection(raw.ReviewHistory, "review_history", &p.ReviewHistory); err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeCollection[T any](raw json.RawMessage, name string, dst *[]T) error {
	if len(raw) == 0 {
		return errors.Errorf("backup file is missing the %q collection", name)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.Wrapf(err, "%q must be an array of records", name)
	}
	return nil
}

func (p *Payload) validate() error {
	for _, pr := range p.Problems {
		if pr.Name == "" {
			return errors.Errorf("problem %d has an empty name", pr.ID)
		}
	}
	for _, st := range p.ReviewStates {
		if st.EaseFactor < 1.3 {
			return errors.Errorf("review state for problem %d has ease factor %.2f below the 1.3 floor", st.ProblemID, st.EaseFactor)
		}
		if st.Interval < 0 {
			return errors.Errorf("review state for problem %d has negative interval %d", st.ProblemID, st.Interval)
		}
	}
	for _, e := range p.ReviewHistory {
		if !e.Quality.Valid() {
			return errors.Errorf("history entry %d has invalid quality %d", e.ID, e.Quality)
		}
		if e.ReviewedAt.IsZero() {
			return errors.Errorf("history entry %d has no reviewed_at timestamp", e.ID)
		}
	}
	return nil
}

// Import replaces every collection with the payload's contents inside
// one transaction: either the whole backup lands or nothing does.
func Import(ctx context.Context, store *db.Store, p *Payload) error {
	err := store.WithTx(ctx, func(tx *db.Tx) error {
		if err := tx.ReplaceProblems(ctx, p.Problems); err != nil {
			return err
		}
		if err := tx.ReplaceReviewStates(ctx, p.ReviewStates); err != nil {
			return err
		}
		return tx.ReplaceHistory(ctx, p.ReviewHistory)
	})
	return errors.Wrap(err, "import backup")
}
