package models

import "testing"

func TestJobStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status   JobStatus
		terminal bool
	}{
		{JobStatusPending, false},
		{JobStatusRunning, false},
		{JobStatusCompleted, true},
		{JobStatusFailed, true},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("IsTerminal(%s) = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestJobFinishCompleted(t *testing.T) {
	job := &CrawlJob{ID: "job_1", Status: JobStatusRunning}

	if err := job.Finish(JobStatusCompleted, ""); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if job.Status != JobStatusCompleted {
		t.Errorf("Status = %s, want completed", job.Status)
	}
	if job.Error != "" {
		t.Errorf("Completed job must not carry an error, got %q", job.Error)
	}
	if job.UpdatedAt.IsZero() {
		t.Error("Finish must stamp UpdatedAt")
	}
}

func TestJobFinishFailedRecordsError(t *testing.T) {
	job := &CrawlJob{ID: "job_1", Status: JobStatusRunning}

	if err := job.Finish(JobStatusFailed, "navigation timeout"); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if job.Status != JobStatusFailed {
		t.Errorf("Status = %s, want failed", job.Status)
	}
	if job.Error != "navigation timeout" {
		t.Errorf("Error = %q, want the failure message", job.Error)
	}
}

func TestJobFinishRejectsNonTerminalStatus(t *testing.T) {
	job := &CrawlJob{ID: "job_1", Status: JobStatusRunning}

	if err := job.Finish(JobStatusRunning, ""); err == nil {
		t.Error("Expected error for non-terminal target status")
	}
	if err := job.Finish(JobStatusPending, ""); err == nil {
		t.Error("Expected error for non-terminal target status")
	}
}

func TestJobFinishIsFinal(t *testing.T) {
	job := &CrawlJob{ID: "job_1", Status: JobStatusRunning}

	if err := job.Finish(JobStatusCompleted, ""); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if err := job.Finish(JobStatusFailed, "late failure"); err == nil {
		t.Error("Expected error when finishing an already-finished job")
	}
	if job.Status != JobStatusCompleted {
		t.Errorf("Terminal status must be immutable, got %s", job.Status)
	}
	if job.Error != "" {
		t.Errorf("Rejected transition must not touch Error, got %q", job.Error)
	}
}
