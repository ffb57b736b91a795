package interfaces

import (
	"context"

	"github.com/ternarybob/scrawl/internal/models"
)

// SchedulerService keeps the live cron timers in sync with persisted tasks.
// Every mutation funnels through it so a task never has more than one
// active timer.
type SchedulerService interface {
	// Sync registers a timer for every enabled task. Tasks with invalid
	// cron expressions are logged and skipped.
	Sync(ctx context.Context) error

	OnTaskCreated(task *models.ScheduledTask)
	OnTaskUpdated(task *models.ScheduledTask)
	OnTaskDeleted(taskID string)

	// RunNow executes the task immediately. A missing or disabled task is
	// a no-op, not an error.
	RunNow(ctx context.Context, taskID string) error

	Stop()
}
