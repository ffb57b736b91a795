package models

import (
	"fmt"
	"time"
)

// JobStatus represents the state of a crawl job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsTerminal reports whether the status is a final state.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CrawlJob records one fetch attempt, scheduled or manual. Rows are created
// already in "running" state and updated exactly once when the attempt ends.
// Jobs are never deleted by the crawler; they are the audit history.
type CrawlJob struct {
	ID        string    `json:"id" badgerhold:"key"`
	URL       string    `json:"url"`
	Status    JobStatus `json:"status"`
	Error     string    `json:"error,omitempty"` // Set only on failure
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Finish moves the job into a terminal state. Only running jobs can be
// finished, and only with a terminal status.
func (j *CrawlJob) Finish(status JobStatus, errMsg string) error {
	if !status.IsTerminal() {
		return fmt.Errorf("cannot finish job %s with non-terminal status %q", j.ID, status)
	}
	if j.Status.IsTerminal() {
		return fmt.Errorf("job %s already finished with status %q", j.ID, j.Status)
	}
	j.Status = status
	if status == JobStatusFailed {
		j.Error = errMsg
	}
	j.UpdatedAt = time.Now()
	return nil
}
