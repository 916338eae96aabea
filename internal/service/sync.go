package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_pipeline_runner.go -package=mocks product-sync/internal/service PipelineRunner
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_sync_service.go -package=mocks -mock_names=SyncService=MockSyncService product-sync/internal/service SyncService

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"product-sync/internal/contextutil"
	"product-sync/internal/indexer"
	"product-sync/internal/storage"
)

// MaxRunsLimit caps how many runs ListRuns returns.
const MaxRunsLimit = 100

// PipelineRunner executes one full fetch, enrich and load cycle.
// This interface is defined from the service layer's perspective (consumer-first).
type PipelineRunner interface {
	Run(ctx context.Context) (indexer.Result, error)
}

// SyncResult is the outcome of a successful sync.
type SyncResult struct {
	RunID    string
	Fetched  int
	Loaded   int
	Duration time.Duration
}

// SyncService runs product syncs and exposes their history.
type SyncService interface {
	// Sync runs the pipeline once. It returns ErrSyncInProgress without
	// running anything if another sync holds the lock.
	Sync(ctx context.Context) (SyncResult, error)
	// InProgress reports whether a sync is currently running.
	InProgress() bool
	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]storage.SyncRun, error)
}

// syncService implements SyncService.
type syncService struct {
	pipeline PipelineRunner
	runs     storage.RunStore

	mu      sync.Mutex
	running atomic.Bool
}

// NewSyncService creates a new SyncService.
func NewSyncService(pipeline PipelineRunner, runs storage.RunStore) SyncService {
	return &syncService{
		pipeline: pipeline,
		runs:     runs,
	}
}

// Sync runs the pipeline under a single-writer lock. Two syncs never touch
// the collection at the same time; the loser is rejected, not queued.
func (s *syncService) Sync(ctx context.Context) (SyncResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if !s.mu.TryLock() {
		logger.WarnContext(ctx, "sync rejected, another sync is running")
		return SyncResult{}, ErrSyncInProgress
	}
	defer s.mu.Unlock()

	s.running.Store(true)
	defer s.running.Store(false)

	// Run history is best effort; a history failure never blocks the sync.
	run, err := s.runs.Start(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to record sync start", "error", err)
		run = nil
	}
	if run != nil {
		logger = logger.With("run_id", run.ID)
		ctx = contextutil.WithLogger(ctx, logger)
	}

	logger.InfoContext(ctx, "sync started")
	result, runErr := s.pipeline.Run(ctx)

	if run != nil {
		run.Fetched = result.Fetched
		run.Loaded = result.Loaded
		run.Status = storage.RunStatusSucceeded
		if runErr != nil {
			run.Status = storage.RunStatusFailed
			run.Error = runErr.Error()
		}
		if err := s.runs.Finish(ctx, run); err != nil {
			logger.ErrorContext(ctx, "failed to record sync finish", "error", err)
		}
	}

	if runErr != nil {
		logger.ErrorContext(ctx, "sync failed", "error", runErr)
		return SyncResult{}, runErr
	}

	out := SyncResult{
		Fetched:  result.Fetched,
		Loaded:   result.Loaded,
		Duration: result.Duration,
	}
	if run != nil {
		out.RunID = run.ID
	}
	logger.InfoContext(ctx, "sync finished", "fetched", out.Fetched, "loaded", out.Loaded, "duration", out.Duration)
	return out, nil
}

// InProgress reports whether a sync is currently running.
func (s *syncService) InProgress() bool {
	return s.running.Load()
}

// ListRuns returns up to limit recent runs.
func (s *syncService) ListRuns(ctx context.Context, limit int) ([]storage.SyncRun, error) {
	if limit < 1 || limit > MaxRunsLimit {
		return nil, &ValidationError{
			Field:   "limit",
			Message: fmt.Sprintf("must be between 1 and %d", MaxRunsLimit),
		}
	}

	runs, err := s.runs.ListRecent(ctx, limit)
	if err != nil {
		return nil, WrapError(err, "failed to list sync runs")
	}
	return runs, nil
}
