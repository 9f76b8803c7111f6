package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/oloynet/tinals-player/internal/reconcile"
	"github.com/oloynet/tinals-player/internal/services"
)

// ErrNoRun reports an event recorded outside a run.
var ErrNoRun = errors.New("no run id in context")

// Run summarizes one pipeline run.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   *time.Time
	Operations   []string
	Error        string
	Materialized int
	Failed       int
}

// Duration returns the elapsed time, or zero while the run is in progress.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// EventRecord is a persisted engine decision.
type EventRecord struct {
	reconcile.Event
	RunID     string
	CreatedAt time.Time
}

// Ledger persists runs and events in SQLite.
type Ledger struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open creates or connects to the ledger at path and applies migrations.
func Open(path string) (*Ledger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	ledger := &Ledger{db: db, path: path, now: time.Now}
	if err := ledger.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return ledger, nil
}

// Path returns the database file location.
func (l *Ledger) Path() string {
	return l.path
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// BeginRun inserts a run row.
func (l *Ledger) BeginRun(ctx context.Context, runID string, operations []string) error {
	if strings.TrimSpace(runID) == "" {
		return errors.New("run id required")
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, operations) VALUES (?, ?, ?)`,
		runID, formatTime(l.now()), strings.Join(operations, ","),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stamps the end of a run with its outcome counts.
func (l *Ledger) FinishRun(ctx context.Context, runID string, runErr error) error {
	var materialized, failed int
	err := l.db.QueryRowContext(ctx,
		`SELECT
            COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0)
        FROM events WHERE run_id = ?`,
		string(reconcile.OutcomeMaterialized), string(reconcile.OutcomeFailed), runID,
	).Scan(&materialized, &failed)
	if err != nil {
		return fmt.Errorf("summarize run: %w", err)
	}

	res, err := l.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, error = ?, materialized = ?, failed = ? WHERE id = ?`,
		formatTime(l.now()), errorText(runErr), materialized, failed, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.Wrap(services.ErrNotFound, "history", "finish run", runID, nil)
	}
	return nil
}

// Record appends an engine event to the run found in ctx.
func (l *Ledger) Record(ctx context.Context, event reconcile.Event) error {
	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		return ErrNoRun
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO events (run_id, workflow, item_id, field, outcome, path, detail, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, event.Workflow, event.ItemID, event.Field, string(event.Outcome),
		nullableString(event.Path), nullableString(event.Detail), formatTime(l.now()),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// RecentRuns lists the newest runs first.
func (l *Ledger) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, operations, error, materialized, failed
        FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun loads a run by id, accepting a unique id prefix.
func (l *Ledger) GetRun(ctx context.Context, id string) (Run, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, operations, error, materialized, failed
        FROM runs WHERE id = ? OR id LIKE ? ORDER BY id LIMIT 2`, id, id+"%")
	if err != nil {
		return Run{}, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		if run.ID == id {
			return run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(matches) {
	case 0:
		return Run{}, services.Wrap(services.ErrNotFound, "history", "get run", id, nil)
	case 1:
		return matches[0], nil
	default:
		return Run{}, services.Wrap(services.ErrValidation, "history", "get run", "ambiguous run id prefix "+id, nil)
	}
}

// RunEvents returns the events of a run in insertion order.
func (l *Ledger) RunEvents(ctx context.Context, runID string) ([]EventRecord, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT run_id, workflow, item_id, field, outcome, path, detail, created_at
        FROM events WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var (
			rec          EventRecord
			outcome      string
			path, detail sql.NullString
			created      string
		)
		if err := rows.Scan(&rec.RunID, &rec.Workflow, &rec.ItemID, &rec.Field, &outcome, &path, &detail, &created); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		rec.Outcome = reconcile.Outcome(outcome)
		rec.Path = path.String
		rec.Detail = detail.String
		rec.CreatedAt, _ = parseTime(created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Prune deletes runs started before cutoff together with their events.
func (l *Ledger) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := l.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run        Run
		started    string
		finished   sql.NullString
		operations string
		runErr     sql.NullString
	)
	if err := scanner.Scan(&run.ID, &started, &finished, &operations, &runErr, &run.Materialized, &run.Failed); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	var err error
	if run.StartedAt, err = parseTime(started); err != nil {
		return Run{}, err
	}
	if finished.Valid {
		ts, err := parseTime(finished.String)
		if err != nil {
			return Run{}, err
		}
		run.FinishedAt = &ts
	}
	if operations != "" {
		run.Operations = strings.Split(operations, ",")
	}
	run.Error = runErr.String
	return run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func errorText(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	ts, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return ts, nil
}
