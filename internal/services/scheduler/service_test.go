package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrawl/internal/interfaces"
	"github.com/ternarybob/scrawl/internal/models"
)

// fakeTaskStorage is an in-memory TaskStorage for scheduler tests.
type fakeTaskStorage struct {
	mu    sync.Mutex
	tasks map[string]*models.ScheduledTask
	err   error
}

func newFakeTaskStorage() *fakeTaskStorage {
	return &fakeTaskStorage{tasks: make(map[string]*models.ScheduledTask)}
}

func (f *fakeTaskStorage) SaveTask(_ context.Context, task *models.ScheduledTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStorage) GetTask(_ context.Context, id string) (*models.ScheduledTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	task, ok := f.tasks[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStorage) ListTasks(_ context.Context) ([]*models.ScheduledTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.ScheduledTask, 0, len(f.tasks))
	for _, task := range f.tasks {
		copied := *task
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeTaskStorage) ListEnabledTasks(_ context.Context) ([]*models.ScheduledTask, error) {
	all, err := f.ListTasks(context.Background())
	if err != nil {
		return nil, err
	}
	out := make([]*models.ScheduledTask, 0, len(all))
	for _, task := range all {
		if task.Enabled {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeTaskStorage) DeleteTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tasks, id)
	return nil
}

// fakeCrawler records Execute calls and returns a canned result or error.
type fakeCrawler struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (f *fakeCrawler) Execute(_ context.Context, url string) (*models.CrawlResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	if f.err != nil {
		return nil, f.err
	}
	return &models.CrawlResult{JobID: "job_test", URL: url, Status: models.JobStatusCompleted}, nil
}

func (f *fakeCrawler) Shutdown() {}

func (f *fakeCrawler) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

func newTestService(t *testing.T, tasks *fakeTaskStorage, crawler *fakeCrawler) *Service {
	t.Helper()
	svc := NewService(tasks, crawler, arbor.NewLogger())
	t.Cleanup(svc.Stop)
	return svc
}

func seedTask(t *testing.T, store *fakeTaskStorage, id, cronExpr string, enabled bool) *models.ScheduledTask {
	t.Helper()
	task := &models.ScheduledTask{
		ID:             id,
		Name:           "Task " + id,
		URL:            "https://example.com/" + id,
		CronExpression: cronExpr,
		Enabled:        enabled,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := store.SaveTask(context.Background(), task); err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return task
}

func TestSyncRegistersEnabledTasks(t *testing.T) {
	store := newFakeTaskStorage()
	seedTask(t, store, "1", "0 9 * * *", true)
	seedTask(t, store, "2", "*/5 * * * *", true)
	seedTask(t, store, "3", "0 9 * * *", false)

	svc := newTestService(t, store, &fakeCrawler{})
	if err := svc.Sync(context.Background()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if svc.Registry().Len() != 2 {
		t.Errorf("Expected 2 timers, got %d", svc.Registry().Len())
	}
	if svc.Registry().Exists(TaskKey("3")) {
		t.Error("Disabled task must not be scheduled")
	}
}

func TestSyncSkipsInvalidCronExpression(t *testing.T) {
	store := newFakeTaskStorage()
	seedTask(t, store, "good", "0 9 * * *", true)
	seedTask(t, store, "bad", "every tuesday", true)

	svc := newTestService(t, store, &fakeCrawler{})
	if err := svc.Sync(context.Background()); err != nil {
		t.Fatalf("Sync must not fail on an invalid expression: %v", err)
	}

	if !svc.Registry().Exists(TaskKey("good")) {
		t.Error("Valid task should be scheduled")
	}
	if svc.Registry().Exists(TaskKey("bad")) {
		t.Error("Invalid task must be skipped")
	}
}

func TestSyncPropagatesStorageError(t *testing.T) {
	store := newFakeTaskStorage()
	store.err = errors.New("disk gone")

	svc := newTestService(t, store, &fakeCrawler{})
	if err := svc.Sync(context.Background()); err == nil {
		t.Fatal("Expected storage error from Sync")
	}
}

func TestOnTaskCreated(t *testing.T) {
	store := newFakeTaskStorage()
	svc := newTestService(t, store, &fakeCrawler{})

	enabled := seedTask(t, store, "1", "0 9 * * *", true)
	svc.OnTaskCreated(enabled)
	if !svc.Registry().Exists(TaskKey("1")) {
		t.Error("Enabled task should be scheduled on create")
	}

	disabled := seedTask(t, store, "2", "0 9 * * *", false)
	svc.OnTaskCreated(disabled)
	if svc.Registry().Exists(TaskKey("2")) {
		t.Error("Disabled task must not be scheduled on create")
	}
}

func TestOnTaskUpdatedRederivesTimer(t *testing.T) {
	store := newFakeTaskStorage()
	svc := newTestService(t, store, &fakeCrawler{})

	task := seedTask(t, store, "1", "0 9 * * *", true)
	svc.OnTaskCreated(task)

	// Disable: timer goes away.
	task.Enabled = false
	svc.OnTaskUpdated(task)
	if svc.Registry().Exists(TaskKey("1")) {
		t.Error("Timer must be removed when task is disabled")
	}

	// Re-enable: timer comes back.
	task.Enabled = true
	svc.OnTaskUpdated(task)
	if !svc.Registry().Exists(TaskKey("1")) {
		t.Error("Timer must be re-registered when task is re-enabled")
	}

	// Edit to an invalid expression: old timer removed, nothing replaces it.
	task.CronExpression = "nope"
	svc.OnTaskUpdated(task)
	if svc.Registry().Exists(TaskKey("1")) {
		t.Error("Timer must not survive an update to an invalid expression")
	}
}

func TestOnTaskDeleted(t *testing.T) {
	store := newFakeTaskStorage()
	svc := newTestService(t, store, &fakeCrawler{})

	task := seedTask(t, store, "1", "0 9 * * *", true)
	svc.OnTaskCreated(task)

	svc.OnTaskDeleted("1")
	if svc.Registry().Exists(TaskKey("1")) {
		t.Error("Timer must be removed on delete")
	}

	// Deleting an unknown task is harmless.
	svc.OnTaskDeleted("missing")
}

func TestRunNowExecutesAndRecordsLastRun(t *testing.T) {
	store := newFakeTaskStorage()
	crawler := &fakeCrawler{}
	svc := newTestService(t, store, crawler)

	task := seedTask(t, store, "1", "0 9 * * *", true)

	before := time.Now()
	if err := svc.RunNow(context.Background(), "1"); err != nil {
		t.Fatalf("RunNow failed: %v", err)
	}

	if calls := crawler.calls(); len(calls) != 1 || calls[0] != task.URL {
		t.Errorf("Expected one crawl of %s, got %v", task.URL, calls)
	}

	saved, err := store.GetTask(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if saved.LastRunAt == nil {
		t.Fatal("LastRunAt must be set after a successful run")
	}
	if saved.LastRunAt.Before(before) {
		t.Errorf("LastRunAt %v predates the run", saved.LastRunAt)
	}
}

func TestRunNowMissingTaskIsNoop(t *testing.T) {
	store := newFakeTaskStorage()
	crawler := &fakeCrawler{}
	svc := newTestService(t, store, crawler)

	if err := svc.RunNow(context.Background(), "missing"); err != nil {
		t.Fatalf("Missing task must not error: %v", err)
	}
	if len(crawler.calls()) != 0 {
		t.Error("Missing task must not trigger a crawl")
	}
}

func TestRunNowDisabledTaskIsNoop(t *testing.T) {
	store := newFakeTaskStorage()
	crawler := &fakeCrawler{}
	svc := newTestService(t, store, crawler)

	seedTask(t, store, "1", "0 9 * * *", false)

	if err := svc.RunNow(context.Background(), "1"); err != nil {
		t.Fatalf("Disabled task must not error: %v", err)
	}
	if len(crawler.calls()) != 0 {
		t.Error("Disabled task must not trigger a crawl")
	}
}

func TestRunNowFailureLeavesLastRunUntouched(t *testing.T) {
	store := newFakeTaskStorage()
	crawler := &fakeCrawler{err: errors.New("navigation timeout")}
	svc := newTestService(t, store, crawler)

	seedTask(t, store, "1", "0 9 * * *", true)

	if err := svc.RunNow(context.Background(), "1"); err == nil {
		t.Fatal("Expected crawl error to propagate")
	}

	saved, err := store.GetTask(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if saved.LastRunAt != nil {
		t.Error("LastRunAt must not be set after a failed run")
	}
}
