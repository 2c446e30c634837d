// Package history persists finished benchmark runs in SQLite so reports from
// different machines or builds can be listed and compared.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/inference-sim/capbench/bench"
	"github.com/inference-sim/capbench/bench/history/migrations"
	"github.com/inference-sim/capbench/bench/trace"
)

// Run is one stored benchmark run.
type Run struct {
	ID        int64
	StartedAt time.Time
	Seed      int64
	Synthetic bool
	Report    bench.Report
	// Evaluations is only filled by SaveRun callers and LoadRun; ListRuns
	// leaves it empty.
	Evaluations []trace.EvaluationRecord
}

// Store persists runs in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens (creating if needed) a history database and applies embedded
// migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveRun stores run with its report lines and evaluations in one transaction
// and returns the new run ID.
func (s *Store) SaveRun(ctx context.Context, run Run) (int64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if len(run.Report.Lines) == 0 {
		return 0, fmt.Errorf("run has no report lines")
	}
	startedAt := run.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save run: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, seed, synthetic, report) VALUES (?, ?, ?, ?)`,
		toMillis(startedAt), run.Seed, run.Synthetic, run.Report.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read run id: %w", err)
	}

	for i, line := range run.Report.Lines {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_lines (run_id, position, profile, last_known_good, last_tested)
			 VALUES (?, ?, ?, ?, ?)`,
			id, i, line.Profile, line.LastKnownGood, line.LastTested,
		); err != nil {
			return 0, fmt.Errorf("insert line %s: %w", line.Profile, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_evaluations
		   (run_id, seq, profile, elapsed_ns, entities, fps, step_size, last_known_good, decision)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare evaluation insert: %w", err)
	}
	defer stmt.Close()
	for _, ev := range run.Evaluations {
		if _, err := stmt.ExecContext(ctx,
			id, ev.Seq, ev.Profile, int64(ev.Elapsed), ev.Entities, ev.FPS,
			ev.StepSize, ev.LastKnownGood, string(ev.Decision),
		); err != nil {
			return 0, fmt.Errorf("insert evaluation %d: %w", ev.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save run: %w", err)
	}
	return id, nil
}

// ListRuns returns up to limit runs, newest first, with their report lines.
// A non-positive limit returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, started_at, seed, synthetic FROM runs
		 ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var runs []Run
	for rows.Next() {
		var (
			run       Run
			startedAt int64
		)
		if err := rows.Scan(&run.ID, &startedAt, &run.Seed, &run.Synthetic); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = fromMillis(startedAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	_ = rows.Close()

	for i := range runs {
		lines, err := s.lines(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Report = bench.Report{Lines: lines}
	}
	return runs, nil
}

// LoadRun returns one run with its report lines and evaluations.
func (s *Store) LoadRun(ctx context.Context, id int64) (Run, error) {
	if s == nil || s.sqlDB == nil {
		return Run{}, fmt.Errorf("storage is not configured")
	}
	run := Run{ID: id}
	var startedAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT started_at, seed, synthetic FROM runs WHERE id = ?`, id,
	).Scan(&startedAt, &run.Seed, &run.Synthetic)
	if err == sql.ErrNoRows {
		return Run{}, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("load run %d: %w", id, err)
	}
	run.StartedAt = fromMillis(startedAt)

	lines, err := s.lines(ctx, id)
	if err != nil {
		return Run{}, err
	}
	run.Report = bench.Report{Lines: lines}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT seq, profile, elapsed_ns, entities, fps, step_size, last_known_good, decision
		 FROM run_evaluations WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return Run{}, fmt.Errorf("load evaluations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			ev       trace.EvaluationRecord
			elapsed  int64
			decision string
		)
		if err := rows.Scan(&ev.Seq, &ev.Profile, &elapsed, &ev.Entities, &ev.FPS,
			&ev.StepSize, &ev.LastKnownGood, &decision); err != nil {
			return Run{}, fmt.Errorf("scan evaluation: %w", err)
		}
		ev.Elapsed = time.Duration(elapsed)
		ev.Decision = trace.Decision(decision)
		run.Evaluations = append(run.Evaluations, ev)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("iterate evaluations: %w", err)
	}
	return run, nil
}

func (s *Store) lines(ctx context.Context, runID int64) ([]bench.ReportLine, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT profile, last_known_good, last_tested FROM run_lines
		 WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("load lines for run %d: %w", runID, err)
	}
	defer rows.Close()
	var lines []bench.ReportLine
	for rows.Next() {
		var line bench.ReportLine
		if err := rows.Scan(&line.Profile, &line.LastKnownGood, &line.LastTested); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
