package interfaces

import (
	"context"

	"github.com/ternarybob/scrawl/internal/models"
)

// CrawlerService runs one crawl attempt end-to-end: it records a CrawlJob,
// fetches and extracts the page, and upserts the CrawledPage snapshot.
// A failed fetch is returned to the caller after the job row is finalized;
// the service never retries on its own.
type CrawlerService interface {
	Execute(ctx context.Context, url string) (*models.CrawlResult, error)
	Shutdown()
}
