package common

import (
	"github.com/google/uuid"
)

// NewTaskID generates a unique scheduled task ID
// Format: task_<uuid>
func NewTaskID() string {
	return "task_" + uuid.New().String()
}

// NewJobID generates a unique crawl job ID
// Format: job_<uuid>
func NewJobID() string {
	return "job_" + uuid.New().String()
}

// NewPageID generates a unique crawled page ID
// Format: page_<uuid>
func NewPageID() string {
	return "page_" + uuid.New().String()
}
