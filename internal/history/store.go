// Package history keeps a local SQLite record of every build run and its steps.
package history

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Status values for a run.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusCanceled  = "canceled"
)

// Run is one invocation of the build pipeline.
type Run struct {
	ID       string
	Project  string
	Revision string
	Started  time.Time
	Finished time.Time
	Status   string
	Error    string
	Steps    []Step
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Step is one toolchain invocation inside a run.
type Step struct {
	Name     string
	Command  string
	Lines    int
	ExitCode int
	Duration time.Duration
	Error    string
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Store persists runs in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (creating if needed) the history database at path.
// Use ":memory:" for an in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrap(ErrDatabaseOpenFailed, err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, wrap(ErrInitializeSchemaFailed, err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		project TEXT NOT NULL,
		revision TEXT NOT NULL DEFAULT '',
		started INTEGER NOT NULL,
		finished INTEGER NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS steps (
		run_id TEXT NOT NULL REFERENCES runs(id),
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		command TEXT NOT NULL,
		lines INTEGER NOT NULL,
		exit_code INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save records run and its steps in one transaction.
func (s *Store) Save(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(ErrSaveFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO runs (id, project, revision, started, finished, status, error) VALUES (?, ?, ?, ?, ?, ?, ?)",
		run.ID, run.Project, run.Revision, run.Started.UnixNano(), run.Finished.UnixNano(), run.Status, run.Error,
	); err != nil {
		return wrap(ErrSaveFailed, err)
	}
	for i, st := range run.Steps {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO steps (run_id, seq, name, command, lines, exit_code, duration_ns, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			run.ID, i, st.Name, st.Command, st.Lines, st.ExitCode, int64(st.Duration), st.Error,
		); err != nil {
			return wrap(ErrSaveFailed, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return wrap(ErrSaveFailed, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first, with their steps.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, project, revision, started, finished, status, error FROM runs ORDER BY started DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, wrap(ErrQueryFailed, err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		if err := rows.Scan(&r.ID, &r.Project, &r.Revision, &started, &finished, &r.Status, &r.Error); err != nil {
			return nil, wrap(ErrQueryFailed, err)
		}
		r.Started = time.Unix(0, started)
		r.Finished = time.Unix(0, finished)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(ErrQueryFailed, err)
	}
	rows.Close()

	for i := range runs {
		steps, err := s.steps(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Steps = steps
	}
	return runs, nil
}

func (s *Store) steps(ctx context.Context, runID string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, command, lines, exit_code, duration_ns, error FROM steps WHERE run_id = ? ORDER BY seq",
		runID,
	)
	if err != nil {
		return nil, wrap(ErrQueryFailed, err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var st Step
		var dur int64
		if err := rows.Scan(&st.Name, &st.Command, &st.Lines, &st.ExitCode, &dur, &st.Error); err != nil {
			return nil, wrap(ErrQueryFailed, err)
		}
		st.Duration = time.Duration(dur)
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(ErrQueryFailed, err)
	}
	return steps, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
