package db

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/oracleot/algos-mastery-sub001/internal/models"
)

// ChangeKind identifies which collection a committed write touched.
type ChangeKind string

const (
	ChangeProblem     ChangeKind = "problem"
	ChangeReviewState ChangeKind = "review_state"
	ChangeHistory     ChangeKind = "history"
)

// Change is a post-commit notification emitted to subscribers. Derived
// views (due queue, streak, stats) recompute when one arrives.
type Change struct {
	Kind      ChangeKind
	ProblemID int
}

// Store provides persistence for problems, review states and the
// review history log, backed by a single sqlite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	// mu serializes read-modify-write transactions; a reader must never
	// interleave with a write to the same record.
	mu sync.Mutex

	subMu   sync.RWMutex
	subs    map[int]func(Change)
	nextSub int
}

// DefaultPath returns the database path under the given data dir,
// creating the directory if needed.
func DefaultPath(dataDir string) (string, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "cannot determine home directory")
		}
		dataDir = filepath.Join(home, ".mastery")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", errors.Wrap(err, "cannot create data directory")
	}
	return filepath.Join(dataDir, "mastery.db"), nil
}

// Open opens (or creates) the database at path and bootstraps the
// schema. Pass ":memory:" for an ephemeral store in tests.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// _loc=auto keeps scanned timestamps in local time; day-boundary
	// comparisons depend on it.
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_loc=auto&_foreign_keys=on"
	}
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	// A single connection keeps :memory: stores coherent and matches
	// the one-writer model.
	sqlDB.SetMaxOpenConns(1)

	if err := initSchema(sqlDB); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "init schema")
	}

	logger.Debug("store opened", "path", path)
	return &Store{db: sqlDB, logger: logger, subs: make(map[int]func(Change))}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	// review_states and review_history deliberately carry no foreign
	// key to problems: deleting a problem orphans its scheduling data,
	// and the due queue filters orphans out on read.
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS problems (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			url TEXT,
			notes TEXT,
			difficulty INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tags (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS problem_tags (
			problem_id INTEGER,
			tag_id INTEGER,
			PRIMARY KEY (problem_id, tag_id),
			FOREIGN KEY (problem_id) REFERENCES problems(id) ON DELETE CASCADE,
			FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS review_states (
			problem_id INTEGER PRIMARY KEY,
			ease_factor REAL NOT NULL DEFAULT 2.5,
			interval_days INTEGER NOT NULL DEFAULT 0,
			repetitions INTEGER NOT NULL DEFAULT 0,
			next_review DATETIME NOT NULL,
			enrolled_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS review_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			problem_id INTEGER NOT NULL,
			quality INTEGER NOT NULL,
			reviewed_at DATETIME NOT NULL,
			interval_before INTEGER NOT NULL,
			interval_after INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_review_history_reviewed_at
			ON review_history (reviewed_at)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

/* -------------------- changefeed -------------------- */

// Subscribe registers fn for post-commit change notifications and
// returns an unsubscribe func. Callbacks run synchronously after the
// commit that produced them.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(changes ...Change) {
	s.subMu.RLock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.RUnlock()

	for _, c := range changes {
		for _, fn := range fns {
			fn(c)
		}
	}
}

/* -------------------- transactions -------------------- */

// Tx wraps a sqlite transaction and collects change notifications to
// emit after a successful commit.
type Tx struct {
	tx      *sql.Tx
	changes []Change
}

// WithTx runs fn inside a transaction. On error the transaction rolls
// back and nothing is committed; on success the collected change
// notifications fire. The store mutex is held for the whole cycle so a
// concurrent read-modify-write cannot interleave.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	tx := &Tx{tx: sqlTx}
	if err := fn(tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			s.logger.Debug("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	s.notify(tx.changes...)
	return nil
}

// GetReviewState returns the scheduling state for a problem, or nil
// when the problem is not enrolled.
func (t *Tx) GetReviewState(ctx context.Context, problemID int) (*models.ReviewState, error) {
	return scanReviewState(t.tx.QueryRowContext(ctx, `
		SELECT problem_id, ease_factor, interval_days, repetitions, next_review, enrolled_at
		FROM review_states WHERE problem_id = ?`, problemID))
}

// PutReviewState inserts or replaces the scheduling state.
func (t *Tx) PutReviewState(ctx context.Context, st models.ReviewState) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO review_states (problem_id, ease_factor, interval_days, repetitions, next_review, enrolled_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(problem_id) DO UPDATE SET
			ease_factor = excluded.ease_factor,
			interval_days = excluded.interval_days,
			repetitions = excluded.repetitions,
			next_review = excluded.next_review`,
		st.ProblemID, st.EaseFactor, st.Interval, st.Repetitions, st.NextReview, st.EnrolledAt,
	)
	if err != nil {
		return errors.Wrap(err, "put review state")
	}
	t.changes = append(t.changes, Change{Kind: ChangeReviewState, ProblemID: st.ProblemID})
	return nil
}

// AppendHistory appends one immutable history entry and returns its id.
func (t *Tx) AppendHistory(ctx context.Context, e models.ReviewHistoryEntry) (int, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO review_history (problem_id, quality, reviewed_at, interval_before, interval_after)
		VALUES (?, ?, ?, ?, ?)`,
		e.ProblemID, int(e.Quality), e.ReviewedAt, e.IntervalBefore, e.IntervalAfter,
	)
	if err != nil {
		return 0, errors.Wrap(err, "append history")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "history insert id")
	}
	t.changes = append(t.changes, Change{Kind: ChangeHistory, ProblemID: e.ProblemID})
	return int(id), nil
}

// ReplaceReviewStates wipes and reloads the review_states collection.
// Used by import; all-or-nothing inside the surrounding transaction.
func (t *Tx) ReplaceReviewStates(ctx context.Context, states []models.ReviewState) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM review_states`); err != nil {
		return errors.Wrap(err, "clear review states")
	}
	for _, st := range states {
		if err := t.PutReviewState(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceHistory wipes and reloads the review_history collection,
// preserving the original entry ids.
func (t *Tx) ReplaceHistory(ctx context.Context, entries []models.ReviewHistoryEntry) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM review_history`); err != nil {
		return errors.Wrap(err, "clear history")
	}
	for _, e := range entries {
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO review_history (id, problem_id, quality, reviewed_at, interval_before, interval_after)
			VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, e.ProblemID, int(e.Quality), e.ReviewedAt, e.IntervalBefore, e.IntervalAfter,
		)
		if err != nil {
			return errors.Wrap(err, "insert history entry")
		}
	}
	if len(entries) > 0 {
		t.changes = append(t.changes, Change{Kind: ChangeHistory})
	}
	return nil
}

// ReplaceProblems wipes and reloads the problems collection, keeping
// the exported ids so review states still resolve.
func (t *Tx) ReplaceProblems(ctx context.Context, problems []models.Problem) error {
	for _, stmt := range []string{`DELETE FROM problem_tags`, `DELETE FROM tags`, `DELETE FROM problems`} {
		if _, err := t.tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "clear problems")
		}
	}
	for _, p := range problems {
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO problems (id, name, url, notes, difficulty)
			VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.URL, p.Notes, p.Difficulty,
		)
		if err != nil {
			return errors.Wrapf(err, "insert problem %q", p.Name)
		}
		for _, tag := range p.Tags {
			if err := linkTag(ctx, t.tx, p.ID, tag.Name); err != nil {
				return err
			}
		}
	}
	if len(problems) > 0 {
		t.changes = append(t.changes, Change{Kind: ChangeProblem})
	}
	return nil
}

/* -------------------- review state reads -------------------- */

func (s *Store) GetReviewState(ctx context.Context, problemID int) (*models.ReviewState, error) {
	return scanReviewState(s.db.QueryRowContext(ctx, `
		SELECT problem_id, ease_factor, interval_days, repetitions, next_review, enrolled_at
		FROM review_states WHERE problem_id = ?`, problemID))
}

func scanReviewState(row *sql.Row) (*models.ReviewState, error) {
	var st models.ReviewState
	err := row.Scan(&st.ProblemID, &st.EaseFactor, &st.Interval, &st.Repetitions, &st.NextReview, &st.EnrolledAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan review state")
	}
	return &st, nil
}

func (s *Store) ListReviewStates(ctx context.Context) ([]models.ReviewState, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT problem_id, ease_factor, interval_days, repetitions, next_review, enrolled_at
		FROM review_states ORDER BY enrolled_at ASC, problem_id ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "list review states")
	}
	defer rows.Close()

	var states []models.ReviewState
	for rows.Next() {
		var st models.ReviewState
		if err := rows.Scan(&st.ProblemID, &st.EaseFactor, &st.Interval, &st.Repetitions, &st.NextReview, &st.EnrolledAt); err != nil {
			return nil, errors.Wrap(err, "scan review state")
		}
		states = append(states, st)
	}
	return states, rows.Err()
}

// ListEnrolled returns every review state joined with its problem, in
// enrollment order. The inner join silently drops states whose problem
// was deleted; the due-queue builder relies on that.
func (s *Store) ListEnrolled(ctx context.Context) ([]models.DueItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.url, p.notes, p.difficulty,
		       rs.problem_id, rs.ease_factor, rs.interval_days, rs.repetitions, rs.next_review, rs.enrolled_at
		FROM review_states rs
		JOIN problems p ON p.id = rs.problem_id
		ORDER BY rs.enrolled_at ASC, rs.problem_id ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "list enrolled")
	}
	defer rows.Close()

	var items []models.DueItem
	for rows.Next() {
		var it models.DueItem
		var url, notes sql.NullString
		err := rows.Scan(
			&it.Problem.ID, &it.Problem.Name, &url, &notes, &it.Problem.Difficulty,
			&it.Review.ProblemID, &it.Review.EaseFactor, &it.Review.Interval,
			&it.Review.Repetitions, &it.Review.NextReview, &it.Review.EnrolledAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scan enrolled item")
		}
		it.Problem.URL = url.String
		it.Problem.Notes = notes.String
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// tags load in a second pass: the pool has a single connection, so
	// no query may run while rows is still open
	rows.Close()
	for i := range items {
		items[i].Problem.Tags, _ = s.getTagsForProblem(ctx, items[i].Problem.ID)
	}
	return items, nil
}

/* -------------------- history reads -------------------- */

func (s *Store) ListHistory(ctx context.Context) ([]models.ReviewHistoryEntry, error) {
	return s.queryHistory(ctx, `
		SELECT id, problem_id, quality, reviewed_at, interval_before, interval_after
		FROM review_history ORDER BY reviewed_at ASC, id ASC`)
}

func (s *Store) ListHistorySince(ctx context.Context, since time.Time) ([]models.ReviewHistoryEntry, error) {
	return s.queryHistory(ctx, `
		SELECT id, problem_id, quality, reviewed_at, interval_before, interval_after
		FROM review_history WHERE reviewed_at >= ? ORDER BY reviewed_at ASC, id ASC`, since)
}

func (s *Store) queryHistory(ctx context.Context, query string, args ...any) ([]models.ReviewHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query history")
	}
	defer rows.Close()

	var entries []models.ReviewHistoryEntry
	for rows.Next() {
		var e models.ReviewHistoryEntry
		var q int
		if err := rows.Scan(&e.ID, &e.ProblemID, &q, &e.ReviewedAt, &e.IntervalBefore, &e.IntervalAfter); err != nil {
			return nil, errors.Wrap(err, "scan history entry")
		}
		e.Quality = models.Rating(q)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

/* -------------------- problems -------------------- */

func (s *Store) AddProblem(ctx context.Context, p models.Problem) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO problems (name, url, notes, difficulty)
		VALUES (?, ?, ?, ?)`,
		p.Name, p.URL, p.Notes, p.Difficulty,
	)
	if err != nil {
		return 0, errors.Wrapf(err, "add problem %q", p.Name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "problem insert id")
	}
	for _, tag := range p.Tags {
		if err := linkTag(ctx, s.db, int(id), tag.Name); err != nil {
			return 0, err
		}
	}
	s.notify(Change{Kind: ChangeProblem, ProblemID: int(id)})
	return int(id), nil
}

func (s *Store) GetProblemByID(ctx context.Context, id int) (*models.Problem, error) {
	return s.getProblem(ctx, `WHERE id = ?`, id)
}

func (s *Store) GetProblemByName(ctx context.Context, name string) (*models.Problem, error) {
	return s.getProblem(ctx, `WHERE name = ?`, name)
}

func (s *Store) getProblem(ctx context.Context, where string, arg any) (*models.Problem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, url, notes, difficulty FROM problems `+where, arg)

	var p models.Problem
	var url, notes sql.NullString
	err := row.Scan(&p.ID, &p.Name, &url, &notes, &p.Difficulty)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan problem")
	}
	p.URL = url.String
	p.Notes = notes.String
	p.Tags, _ = s.getTagsForProblem(ctx, p.ID)
	return &p, nil
}

func (s *Store) ListProblems(ctx context.Context) ([]models.Problem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, url, notes, difficulty FROM problems ORDER BY id ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "list problems")
	}
	defer rows.Close()

	var problems []models.Problem
	for rows.Next() {
		var p models.Problem
		var url, notes sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &url, &notes, &p.Difficulty); err != nil {
			return nil, errors.Wrap(err, "scan problem")
		}
		p.URL = url.String
		p.Notes = notes.String
		problems = append(problems, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// second pass for tags; see ListEnrolled
	rows.Close()
	for i := range problems {
		problems[i].Tags, _ = s.getTagsForProblem(ctx, problems[i].ID)
	}
	return problems, nil
}

// UpdateProblemDetails rewrites a problem's descriptive fields and
// replaces its tag set. Scheduling state is untouched.
func (s *Store) UpdateProblemDetails(ctx context.Context, p models.Problem) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE problems SET name = ?, url = ?, notes = ?, difficulty = ?
		WHERE id = ?`,
		p.Name, p.URL, p.Notes, p.Difficulty, p.ID,
	)
	if err != nil {
		return errors.Wrapf(err, "update problem %d", p.ID)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM problem_tags WHERE problem_id = ?`, p.ID); err != nil {
		return errors.Wrap(err, "clear problem tags")
	}
	for _, tag := range p.Tags {
		if err := linkTag(ctx, s.db, p.ID, tag.Name); err != nil {
			return err
		}
	}
	s.notify(Change{Kind: ChangeProblem, ProblemID: p.ID})
	return nil
}

// DeleteProblem removes the problem row only. Its review state and
// history become orphans; reads exclude them.
func (s *Store) DeleteProblem(ctx context.Context, id int) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM problems WHERE id = ?`, id); err != nil {
		return errors.Wrapf(err, "delete problem %d", id)
	}
	s.notify(Change{Kind: ChangeProblem, ProblemID: id})
	return nil
}

/* -------------------- tags -------------------- */

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func linkTag(ctx context.Context, db execer, problemID int, tagName string) error {
	tagName = strings.TrimSpace(tagName)
	if tagName == "" {
		return nil
	}
	if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO tags (name) VALUES (?)`, tagName); err != nil {
		return errors.Wrap(err, "ensure tag")
	}
	var tagID int
	if err := db.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, tagName).Scan(&tagID); err != nil {
		return errors.Wrap(err, "lookup tag")
	}
	_, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO problem_tags (problem_id, tag_id) VALUES (?, ?)`, problemID, tagID)
	return errors.Wrap(err, "link tag")
}

func (s *Store) getTagsForProblem(ctx context.Context, problemID int) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name
		FROM tags t
		JOIN problem_tags pt ON t.id = pt.tag_id
		WHERE pt.problem_id = ?
		ORDER BY t.name ASC`, problemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
