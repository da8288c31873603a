package scheduler

import (
	"sync"

	"github.com/google/uuid"

	"github.com/tunedl/tunedl/download/catalog"
)

// TaskStatus is the lifecycle state of one download task.
type TaskStatus string

const (
	StatusPending         TaskStatus = "pending"
	StatusInProgress      TaskStatus = "in-progress"
	StatusSucceeded       TaskStatus = "succeeded"
	StatusSkippedExisting TaskStatus = "skipped-existing"
	StatusFailed          TaskStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s TaskStatus) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusSkippedExisting, StatusFailed:
		return true
	}
	return false
}

// Task is one track's unit of work. Created at schedule time, one per track,
// owned exclusively by the scheduler; the status transition is its only
// mutation.
type Task struct {
	ID          string
	Track       catalog.Track
	Destination string

	mu     sync.Mutex
	status TaskStatus
	errMsg string
}

// NewTask creates a pending task for a track and its planned destination.
func NewTask(track catalog.Track, destination string) *Task {
	return &Task{
		ID:          uuid.NewString(),
		Track:       track,
		Destination: destination,
		status:      StatusPending,
	}
}

// Status returns the current status.
func (t *Task) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Err returns the failure message, empty unless the task failed.
func (t *Task) Err() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errMsg
}

// MarkInProgress transitions pending -> in-progress.
func (t *Task) MarkInProgress() {
	t.setStatus(StatusInProgress, "")
}

// MarkSucceeded transitions to succeeded.
func (t *Task) MarkSucceeded() {
	t.setStatus(StatusSucceeded, "")
}

// MarkSkipped transitions pending -> skipped-existing without any work done.
func (t *Task) MarkSkipped() {
	t.setStatus(StatusSkippedExisting, "")
}

// MarkFailed transitions to failed with the cause.
func (t *Task) MarkFailed(msg string) {
	t.setStatus(StatusFailed, msg)
}

func (t *Task) setStatus(s TaskStatus, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Terminal() {
		return
	}
	t.status = s
	t.errMsg = msg
}
