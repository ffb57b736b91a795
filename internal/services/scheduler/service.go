package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrawl/internal/interfaces"
	"github.com/ternarybob/scrawl/internal/models"
)

// Service reconciles the timer registry against persisted tasks. It holds
// no state of its own beyond the registry; the task rows are the source of
// truth and every mutation re-derives the timer for that task.
//
// A scheduled fire and a manual run of the same task may execute
// concurrently; both create their own job rows and the last writer wins
// the page snapshot and LastRunAt. That is the accepted behavior, not a
// race to fix here.
type Service struct {
	registry *Registry
	tasks    interfaces.TaskStorage
	crawler  interfaces.CrawlerService
	logger   arbor.ILogger
}

// NewService creates a scheduler service with its own timer registry.
func NewService(tasks interfaces.TaskStorage, crawler interfaces.CrawlerService, logger arbor.ILogger) *Service {
	return &Service{
		registry: NewRegistry(logger),
		tasks:    tasks,
		crawler:  crawler,
		logger:   logger,
	}
}

// Registry exposes the timer registry for inspection.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Sync registers a timer for every enabled task. A task whose cron
// expression fails to parse is logged and left unscheduled; it never
// fails startup or blocks other tasks.
func (s *Service) Sync(ctx context.Context) error {
	tasks, err := s.tasks.ListEnabledTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load enabled tasks: %w", err)
	}

	registered := 0
	for _, task := range tasks {
		if err := s.register(task); err != nil {
			s.logger.Warn().
				Str("task_id", task.ID).
				Str("cron", task.CronExpression).
				Err(err).
				Msg("Skipping task with invalid schedule")
			continue
		}
		registered++
	}

	s.logger.Info().Int("tasks", registered).Msg("Scheduled tasks loaded")
	return nil
}

// OnTaskCreated registers a timer for a newly created task if enabled.
func (s *Service) OnTaskCreated(task *models.ScheduledTask) {
	if !task.Enabled {
		return
	}
	if err := s.register(task); err != nil {
		s.logger.Warn().
			Str("task_id", task.ID).
			Str("cron", task.CronExpression).
			Err(err).
			Msg("Created task not scheduled")
	}
}

// OnTaskUpdated re-derives the timer for an edited task: the old timer is
// always removed first, and a new one is registered only when the task is
// still enabled. A stale schedule never survives an edit.
func (s *Service) OnTaskUpdated(task *models.ScheduledTask) {
	s.registry.Remove(TaskKey(task.ID))
	if !task.Enabled {
		return
	}
	if err := s.register(task); err != nil {
		s.logger.Warn().
			Str("task_id", task.ID).
			Str("cron", task.CronExpression).
			Err(err).
			Msg("Updated task not scheduled")
	}
}

// OnTaskDeleted removes the task's timer. It does not touch storage, so
// it works whether or not the row still exists.
func (s *Service) OnTaskDeleted(taskID string) {
	s.registry.Remove(TaskKey(taskID))
}

// RunNow executes the task immediately. A missing or disabled task is a
// no-op; the boundary layer decides how to report that to its caller. On
// success the task's LastRunAt is persisted; on failure it is untouched
// and the next cron fire (or manual run) is the retry.
func (s *Service) RunNow(ctx context.Context, taskID string) error {
	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			s.logger.Debug().Str("task_id", taskID).Msg("Run requested for unknown task")
			return nil
		}
		return err
	}
	if !task.Enabled {
		s.logger.Debug().Str("task_id", taskID).Msg("Run requested for disabled task")
		return nil
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("name", task.Name).
		Str("url", task.URL).
		Msg("Running scheduled task")

	if _, err := s.crawler.Execute(ctx, task.URL); err != nil {
		return err
	}

	now := time.Now()
	task.LastRunAt = &now
	if err := s.tasks.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to record last run: %w", err)
	}
	return nil
}

// register normalizes and registers the task's timer. The timer callback
// funnels through RunNow so scheduled and manual runs behave identically;
// errors from a timer fire have no waiting caller and are logged here.
func (s *Service) register(task *models.ScheduledTask) error {
	taskID := task.ID
	return s.registry.Add(TaskKey(taskID), task.CronExpression, func() {
		if err := s.RunNow(context.Background(), taskID); err != nil {
			s.logger.Error().Str("task_id", taskID).Err(err).Msg("Scheduled task failed")
		}
	})
}

// Stop halts the timer registry.
func (s *Service) Stop() {
	s.registry.Stop()
	s.logger.Info().Msg("Scheduler stopped")
}
