package scheduler

import (
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// Registry owns the live cron timers, one per scheduled task. It is plain
// timer bookkeeping: callbacks carry the business logic. Re-adding an
// existing key replaces its timer, so a key never has two live entries.
type Registry struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]cron.EntryID
	logger  arbor.ILogger
}

// NewRegistry creates a registry with a running 6-field cron engine.
func NewRegistry(logger arbor.ILogger) *Registry {
	c := cron.New(cron.WithSeconds())
	c.Start()
	return &Registry{
		cron:    c,
		entries: make(map[string]cron.EntryID),
		logger:  logger,
	}
}

// TaskKey derives the registry key for a task id.
func TaskKey(taskID string) string {
	return "task-" + taskID
}

// NormalizeCronExpression converts a 5-field expression to the canonical
// 6-field form by prefixing an implicit seconds field. Already-6-field
// input passes through unchanged.
func NormalizeCronExpression(expr string) string {
	parts := strings.Fields(expr)
	if len(parts) == 5 {
		return "0 " + strings.Join(parts, " ")
	}
	return strings.TrimSpace(expr)
}

// Add registers fn under key, cancelling any existing timer for the key
// first. An unparseable expression is returned as an error and leaves the
// key with no timer.
func (r *Registry) Add(key, expr string, fn func()) error {
	normalized := NormalizeCronExpression(expr)

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, exists := r.entries[key]; exists {
		r.cron.Remove(id)
		delete(r.entries, key)
	}

	id, err := r.cron.AddFunc(normalized, fn)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	r.entries[key] = id

	r.logger.Debug().Str("key", key).Str("schedule", normalized).Msg("Timer registered")
	return nil
}

// Remove cancels the timer for key. Removing an absent key is a no-op.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, exists := r.entries[key]
	if !exists {
		return
	}
	r.cron.Remove(id)
	delete(r.entries, key)

	r.logger.Debug().Str("key", key).Msg("Timer removed")
}

// Exists reports whether a timer is registered for key.
func (r *Registry) Exists(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.entries[key]
	return exists
}

// Len returns the number of registered timers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Stop halts the cron engine and waits for in-flight callbacks to return.
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	<-r.cron.Stop().Done()
}
