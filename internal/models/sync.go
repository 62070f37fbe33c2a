package models

import (
	"fmt"
	"time"
)

// Sync run statuses.
const (
	SyncStatusPending   = "pending"
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

// SyncRun tracks a single library sync operation from start to finish.
//
// A run is created in the pending state, moves to running when the worker
// pool starts, and finishes as completed or failed. Progress counters are
// updated as tracks are cached.
type SyncRun struct {
	id         string
	sequence   int
	status     string
	total      int
	synced     int
	failed     int
	errMessage string
	startedAt  *time.Time
	finishedAt *time.Time
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
}

// NewSyncRun creates a sync run in the pending state
func NewSyncRun(sequence int) *SyncRun {
	now := time.Now()
	return &SyncRun{
		sequence:  sequence,
		status:    SyncStatusPending,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *SyncRun) ID() string             { return s.id }
func (s *SyncRun) Sequence() int          { return s.sequence }
func (s *SyncRun) Status() string         { return s.status }
func (s *SyncRun) Total() int             { return s.total }
func (s *SyncRun) Synced() int            { return s.synced }
func (s *SyncRun) Failed() int            { return s.failed }
func (s *SyncRun) ErrorMessage() string   { return s.errMessage }
func (s *SyncRun) StartedAt() *time.Time  { return s.startedAt }
func (s *SyncRun) FinishedAt() *time.Time { return s.finishedAt }
func (s *SyncRun) CreatedAt() time.Time   { return s.createdAt }
func (s *SyncRun) UpdatedAt() time.Time   { return s.updatedAt }
func (s *SyncRun) DeletedAt() *time.Time  { return s.deletedAt }

func (s *SyncRun) SetID(id string)             { s.id = id }
func (s *SyncRun) SetStatus(status string)     { s.status = status }
func (s *SyncRun) SetTotal(total int)          { s.total = total }
func (s *SyncRun) SetSynced(synced int)        { s.synced = synced }
func (s *SyncRun) SetFailed(failed int)        { s.failed = failed }
func (s *SyncRun) SetErrorMessage(msg string)  { s.errMessage = msg }
func (s *SyncRun) SetStartedAt(at *time.Time)  { s.startedAt = at }
func (s *SyncRun) SetFinishedAt(at *time.Time) { s.finishedAt = at }
func (s *SyncRun) SetUpdatedAt(at time.Time)   { s.updatedAt = at }
func (s *SyncRun) SetDeletedAt(at *time.Time)  { s.deletedAt = at }

// Start marks the run as running and stamps the start time
func (s *SyncRun) Start() {
	now := time.Now()
	s.status = SyncStatusRunning
	s.startedAt = &now
	s.updatedAt = now
}

// Complete marks the run as completed and stamps the finish time
func (s *SyncRun) Complete() {
	now := time.Now()
	s.status = SyncStatusCompleted
	s.finishedAt = &now
	s.updatedAt = now
}

// Fail marks the run as failed with the given error message
func (s *SyncRun) Fail(msg string) {
	now := time.Now()
	s.status = SyncStatusFailed
	s.errMessage = msg
	s.finishedAt = &now
	s.updatedAt = now
}

// Validate checks that the run has a valid identifier and status
func (s *SyncRun) Validate() error {
	if s.id == "" {
		return fmt.Errorf("sync run ID is required")
	}
	switch s.status {
	case SyncStatusPending, SyncStatusRunning, SyncStatusCompleted, SyncStatusFailed:
	default:
		return fmt.Errorf("invalid sync run status: %s", s.status)
	}
	return nil
}
