package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrawl/internal/common"
	"github.com/ternarybob/scrawl/internal/interfaces"
	"github.com/ternarybob/scrawl/internal/models"
)

// TaskHandler handles scheduled task endpoints. Every mutation notifies
// the scheduler so the timer registry never drifts from storage.
type TaskHandler struct {
	tasks     interfaces.TaskStorage
	scheduler interfaces.SchedulerService
	validate  *validator.Validate
	logger    arbor.ILogger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks interfaces.TaskStorage, scheduler interfaces.SchedulerService, logger arbor.ILogger) *TaskHandler {
	return &TaskHandler{
		tasks:     tasks,
		scheduler: scheduler,
		validate:  validator.New(),
		logger:    logger,
	}
}

// ListTasksHandler returns all scheduled tasks, newest first.
func (h *TaskHandler) ListTasksHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	tasks, err := h.tasks.ListTasks(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteData(w, tasks)
}

// GetTaskHandler returns one task by id.
func (h *TaskHandler) GetTaskHandler(w http.ResponseWriter, r *http.Request, taskID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	task, err := h.tasks.GetTask(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Task not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteData(w, task)
}

// CreateTaskHandler creates a scheduled task. Tasks start enabled and are
// registered with the scheduler immediately.
func (h *TaskHandler) CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.TaskCreateRequest
	if !DecodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "name, url and cron_expression are required")
		return
	}

	task := &models.ScheduledTask{
		ID:             common.NewTaskID(),
		Name:           req.Name,
		URL:            req.URL,
		CronExpression: req.CronExpression,
		Enabled:        true,
	}
	if err := h.tasks.SaveTask(r.Context(), task); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.scheduler.OnTaskCreated(task)

	h.logger.Info().Str("task_id", task.ID).Str("name", task.Name).Msg("Scheduled task created")
	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    task,
	})
}

// UpdateTaskHandler applies a partial update, then re-derives the task's
// timer. Disabling a task or changing its cadence takes effect here.
func (h *TaskHandler) UpdateTaskHandler(w http.ResponseWriter, r *http.Request, taskID string) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	var req models.TaskUpdateRequest
	if !DecodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid task fields")
		return
	}

	task, err := h.tasks.GetTask(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Task not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	req.Apply(task)
	if err := h.tasks.SaveTask(r.Context(), task); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.scheduler.OnTaskUpdated(task)

	h.logger.Info().Str("task_id", task.ID).Bool("enabled", task.Enabled).Msg("Scheduled task updated")
	WriteData(w, task)
}

// DeleteTaskHandler removes the task. The timer is removed before the row
// so a fire cannot slip in between.
func (h *TaskHandler) DeleteTaskHandler(w http.ResponseWriter, r *http.Request, taskID string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	if _, err := h.tasks.GetTask(r.Context(), taskID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Task not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.scheduler.OnTaskDeleted(taskID)

	if err := h.tasks.DeleteTask(r.Context(), taskID); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info().Str("task_id", taskID).Msg("Scheduled task deleted")
	WriteSuccess(w, "Task deleted")
}

// RunTaskHandler triggers an immediate run of the task. Unlike the
// scheduler's internal no-op, a missing task is a 404 here; a disabled
// task reports that the run was skipped.
func (h *TaskHandler) RunTaskHandler(w http.ResponseWriter, r *http.Request, taskID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	task, err := h.tasks.GetTask(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Task not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !task.Enabled {
		WriteSuccess(w, "Task is disabled, run skipped")
		return
	}

	start := time.Now()
	if err := h.scheduler.RunNow(r.Context(), taskID); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info().Str("task_id", taskID).Dur("duration", time.Since(start)).Msg("Manual task run completed")
	WriteSuccess(w, "Task run completed")
}
