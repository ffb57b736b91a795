package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrawl/internal/interfaces"
	"github.com/ternarybob/scrawl/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// TaskStorage implements the TaskStorage interface for Badger
type TaskStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewTaskStorage creates a new TaskStorage instance
func NewTaskStorage(db *BadgerDB, logger arbor.ILogger) interfaces.TaskStorage {
	return &TaskStorage{
		db:     db,
		logger: logger,
	}
}

func (s *TaskStorage) SaveTask(ctx context.Context, task *models.ScheduledTask) error {
	if task.ID == "" {
		return fmt.Errorf("task ID is required")
	}

	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	if err := s.db.Store().Upsert(task.ID, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

func (s *TaskStorage) GetTask(ctx context.Context, id string) (*models.ScheduledTask, error) {
	var task models.ScheduledTask
	if err := s.db.Store().Get(id, &task); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("task %s: %w", id, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

func (s *TaskStorage) ListTasks(ctx context.Context) ([]*models.ScheduledTask, error) {
	var tasks []models.ScheduledTask
	// Newest first
	if err := s.db.Store().Find(&tasks, badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	result := make([]*models.ScheduledTask, len(tasks))
	for i := range tasks {
		result[i] = &tasks[i]
	}
	return result, nil
}

func (s *TaskStorage) ListEnabledTasks(ctx context.Context) ([]*models.ScheduledTask, error) {
	var tasks []models.ScheduledTask
	if err := s.db.Store().Find(&tasks, badgerhold.Where("Enabled").Eq(true)); err != nil {
		return nil, fmt.Errorf("failed to list enabled tasks: %w", err)
	}

	result := make([]*models.ScheduledTask, len(tasks))
	for i := range tasks {
		result[i] = &tasks[i]
	}
	return result, nil
}

func (s *TaskStorage) DeleteTask(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.ScheduledTask{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
