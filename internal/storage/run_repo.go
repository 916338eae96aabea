package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_run_store.go -package=mocks product-sync/internal/storage RunStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// timeLayout is how timestamps are stored; it sorts lexically in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// RunStore defines the interface for sync run history.
type RunStore interface {
	// Start records a new run in the running state.
	Start(ctx context.Context) (*SyncRun, error)
	// Finish stores the final status, counts and error of a run.
	Finish(ctx context.Context, run *SyncRun) error
	// ListRecent returns up to limit runs, newest first.
	ListRecent(ctx context.Context, limit int) ([]SyncRun, error)
}

// RunRepo provides methods for sync run operations.
// It implements the RunStore interface.
type RunRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewRunRepo creates a new RunRepo.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db, now: time.Now}
}

// Start inserts a run with a fresh UUID and the current time.
func (r *RunRepo) Start(ctx context.Context) (*SyncRun, error) {
	run := &SyncRun{
		ID:        uuid.New().String(),
		StartedAt: r.now().UTC(),
		Status:    RunStatusRunning,
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sync_runs (id, started_at, status) VALUES (?, ?, ?)",
		run.ID, run.StartedAt.Format(timeLayout), string(run.Status),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sync run: %w", err)
	}

	return run, nil
}

// Finish marks run as finished now. FinishedAt is set on run if unset.
// Returns ErrNotFound if the run was never started.
func (r *RunRepo) Finish(ctx context.Context, run *SyncRun) error {
	if run.FinishedAt == nil {
		finished := r.now().UTC()
		run.FinishedAt = &finished
	}

	res, err := r.db.ExecContext(ctx,
		"UPDATE sync_runs SET finished_at = ?, status = ?, fetched = ?, loaded = ?, error = ? WHERE id = ?",
		run.FinishedAt.UTC().Format(timeLayout), string(run.Status), run.Fetched, run.Loaded, run.Error, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update sync run: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecent returns up to limit runs ordered by start time, newest first.
func (r *RunRepo) ListRecent(ctx context.Context, limit int) ([]SyncRun, error) {
	if limit <= 0 {
		return []SyncRun{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, started_at, finished_at, status, fetched, loaded, error FROM sync_runs ORDER BY started_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	runs := []SyncRun{}
	for rows.Next() {
		var (
			run        SyncRun
			startedAt  string
			finishedAt sql.NullString
			status     string
		)
		if err := rows.Scan(&run.ID, &startedAt, &finishedAt, &status, &run.Fetched, &run.Loaded, &run.Error); err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}

		run.Status = RunStatus(status)
		run.StartedAt, err = time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse started_at timestamp: %w", err)
		}
		if finishedAt.Valid {
			t, err := time.Parse(timeLayout, finishedAt.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse finished_at timestamp: %w", err)
			}
			run.FinishedAt = &t
		}

		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sync runs: %w", err)
	}

	return runs, nil
}

// MarkInterrupted moves runs left in the running state by a previous process
// to interrupted. It returns how many runs were updated.
func (r *RunRepo) MarkInterrupted(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sync_runs SET status = ?, finished_at = ?, error = ? WHERE status = ?",
		string(RunStatusInterrupted), r.now().UTC().Format(timeLayout), "process exited before the run finished", string(RunStatusRunning),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark interrupted runs: %w", err)
	}
	return res.RowsAffected()
}
