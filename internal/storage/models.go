package storage

import "time"

// RunStatus is the lifecycle state of a sync run.
type RunStatus string

const (
	RunStatusRunning     RunStatus = "running"
	RunStatusSucceeded   RunStatus = "succeeded"
	RunStatusFailed      RunStatus = "failed"
	RunStatusInterrupted RunStatus = "interrupted"
)

// SyncRun is one recorded execution of the sync pipeline.
type SyncRun struct {
	ID         string     // UUID
	StartedAt  time.Time
	FinishedAt *time.Time // nil while running
	Status     RunStatus
	Fetched    int
	Loaded     int
	Error      string
}
