package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/scrawl/internal/models"
)

// ErrNotFound marks lookups for rows that do not exist. Callers use
// errors.Is to tell a missing row from a storage failure.
var ErrNotFound = errors.New("not found")

// TaskStorage - interface for scheduled task persistence
type TaskStorage interface {
	SaveTask(ctx context.Context, task *models.ScheduledTask) error
	GetTask(ctx context.Context, id string) (*models.ScheduledTask, error)
	ListTasks(ctx context.Context) ([]*models.ScheduledTask, error)
	ListEnabledTasks(ctx context.Context) ([]*models.ScheduledTask, error)
	DeleteTask(ctx context.Context, id string) error
}

// JobStorage - interface for crawl job persistence
type JobStorage interface {
	SaveJob(ctx context.Context, job *models.CrawlJob) error
	GetJob(ctx context.Context, id string) (*models.CrawlJob, error)
	ListJobs(ctx context.Context) ([]*models.CrawlJob, error)
}

// PageStorage - interface for crawled page persistence
type PageStorage interface {
	// UpsertPage creates the page or overwrites the existing row for the
	// same URL, preserving its ID and CreatedAt.
	UpsertPage(ctx context.Context, page *models.CrawledPage) (*models.CrawledPage, error)
	GetPage(ctx context.Context, id string) (*models.CrawledPage, error)
	GetPageByURL(ctx context.Context, url string) (*models.CrawledPage, error)
	ListPages(ctx context.Context) ([]*models.CrawledPage, error)
	DeletePage(ctx context.Context, id string) error
}

// StorageManager aggregates the entity storages over one connection
type StorageManager interface {
	TaskStorage() TaskStorage
	JobStorage() JobStorage
	PageStorage() PageStorage
	Close() error
}
