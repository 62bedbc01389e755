package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Changelog is the durable sink for applied reconciliation runs, backed by
// SQLite. Preview runs are never recorded; by default decision lines are
// printed and discarded.
type Changelog struct {
	db *sql.DB
}

// OpenChangelog opens (creating if needed) the changelog database at the
// given path and configures WAL mode.
func OpenChangelog(path string) (*Changelog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "changelog: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "changelog: exec %s", pragma)
		}
	}
	return &Changelog{db: db}, nil
}

const changelogMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	command     TEXT NOT NULL,
	source      TEXT,
	counters    TEXT NOT NULL,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS run_changes (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL REFERENCES runs(id),
	line   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_run_changes_run_id ON run_changes(run_id);
`

// Migrate creates the changelog schema if it does not exist.
func (c *Changelog) Migrate(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, changelogMigration)
	return eris.Wrap(err, "changelog: migrate")
}

// Close closes the underlying database.
func (c *Changelog) Close() error {
	return c.db.Close()
}

// RunRecord is one recorded reconciliation run. Lines is populated by
// GetRun only.
type RunRecord struct {
	ID         string         `json:"id"`
	Command    string         `json:"command"`
	Source     string         `json:"source,omitempty"`
	Counters   map[string]int `json:"counters"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Lines      []string       `json:"lines,omitempty"`
}

// RecordRun stores one applied run and its decision lines in a single
// transaction. Returns the new run ID.
func (c *Changelog) RecordRun(ctx context.Context, command, source string, counters map[string]int, startedAt time.Time, lines []string) (string, error) {
	id := uuid.New().String()
	finished := time.Now().UTC()

	countersJSON, err := json.Marshal(counters)
	if err != nil {
		return "", eris.Wrap(err, "changelog: marshal counters")
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return "", eris.Wrap(err, "changelog: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, command, source, counters, started_at, finished_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, command, source, string(countersJSON), startedAt.UTC(), finished,
	)
	if err != nil {
		return "", eris.Wrap(err, "changelog: insert run")
	}

	for _, line := range lines {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_changes (run_id, line) VALUES (?, ?)`, id, line,
		); err != nil {
			return "", eris.Wrap(err, "changelog: insert change line")
		}
	}

	if err := tx.Commit(); err != nil {
		return "", eris.Wrap(err, "changelog: commit")
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first.
func (c *Changelog) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, command, source, counters, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "changelog: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []RunRecord
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "changelog: iterate runs")
}

// GetRun returns one run with its decision lines.
func (c *Changelog) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, command, source, counters, started_at, finished_at
		 FROM runs WHERE id = ?`, id)

	r, err := scanRun(row.Scan)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, eris.Errorf("changelog: run %s not found", id)
		}
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT line FROM run_changes WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, eris.Wrap(err, "changelog: get run lines")
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, eris.Wrap(err, "changelog: scan line")
		}
		r.Lines = append(r.Lines, line)
	}
	return r, eris.Wrap(rows.Err(), "changelog: iterate lines")
}

func scanRun(scan func(...any) error) (*RunRecord, error) {
	var r RunRecord
	var countersJSON string
	if err := scan(&r.ID, &r.Command, &r.Source, &countersJSON, &r.StartedAt, &r.FinishedAt); err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "changelog: scan run")
	}
	if err := json.Unmarshal([]byte(countersJSON), &r.Counters); err != nil {
		return nil, eris.Wrap(err, "changelog: parse counters")
	}
	return &r, nil
}
