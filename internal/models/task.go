package models

import "time"

// ScheduledTask is a recurring crawl definition driven by a cron expression.
// The expression is persisted exactly as the user supplied it; normalization
// to the canonical 6-field form happens only when a timer is registered.
type ScheduledTask struct {
	ID             string     `json:"id" badgerhold:"key"`
	Name           string     `json:"name"`
	URL            string     `json:"url"`
	CronExpression string     `json:"cron_expression"`
	Enabled        bool       `json:"enabled"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty"` // Set only by a successful run
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TaskCreateRequest is the payload for creating a scheduled task.
// Tasks start enabled.
type TaskCreateRequest struct {
	Name           string `json:"name" validate:"required"`
	URL            string `json:"url" validate:"required,url"`
	CronExpression string `json:"cron_expression" validate:"required"`
}

// TaskUpdateRequest is the payload for updating a scheduled task.
// Nil fields are left unchanged.
type TaskUpdateRequest struct {
	Name           *string `json:"name,omitempty"`
	URL            *string `json:"url,omitempty" validate:"omitempty,url"`
	CronExpression *string `json:"cron_expression,omitempty"`
	Enabled        *bool   `json:"enabled,omitempty"`
}

// Apply merges the non-nil request fields into the task.
func (r *TaskUpdateRequest) Apply(task *ScheduledTask) {
	if r.Name != nil {
		task.Name = *r.Name
	}
	if r.URL != nil {
		task.URL = *r.URL
	}
	if r.CronExpression != nil {
		task.CronExpression = *r.CronExpression
	}
	if r.Enabled != nil {
		task.Enabled = *r.Enabled
	}
}
