package crawler

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrawl/internal/common"
	"github.com/ternarybob/scrawl/internal/interfaces"
	"github.com/ternarybob/scrawl/internal/models"
)

// Service runs single crawl attempts. It is stateless with respect to
// scheduled tasks; it only ever sees a bare URL. Every attempt produces
// exactly one CrawlJob row whose terminal status is completed or failed.
type Service struct {
	fetcher   Fetcher
	processor *ContentProcessor
	jobs      interfaces.JobStorage
	pages     interfaces.PageStorage
	logger    arbor.ILogger
}

// NewService creates a crawler service over the given fetcher and storages.
func NewService(fetcher Fetcher, jobs interfaces.JobStorage, pages interfaces.PageStorage, logger arbor.ILogger) *Service {
	return &Service{
		fetcher:   fetcher,
		processor: NewContentProcessor(logger),
		jobs:      jobs,
		pages:     pages,
		logger:    logger,
	}
}

// Execute crawls one URL. The job row is written in running state before
// any network activity so even attempts that die mid-fetch are auditable.
// Failures are recorded on the job and returned; the service never retries.
func (s *Service) Execute(ctx context.Context, url string) (*models.CrawlResult, error) {
	job := &models.CrawlJob{
		ID:     common.NewJobID(),
		URL:    url,
		Status: models.JobStatusRunning,
	}
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create crawl job: %w", err)
	}

	s.logger.Info().Str("job_id", job.ID).Str("url", url).Msg("Crawl started")

	page, err := s.crawl(ctx, url)
	if err != nil {
		s.failJob(ctx, job, err)
		return nil, err
	}

	if ferr := job.Finish(models.JobStatusCompleted, ""); ferr != nil {
		return nil, ferr
	}
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to complete crawl job: %w", err)
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("page_id", page.ID).
		Str("url", url).
		Str("title", page.Title).
		Msg("Crawl completed")

	return &models.CrawlResult{
		JobID:  job.ID,
		PageID: page.ID,
		URL:    page.URL,
		Title:  page.Title,
		Status: models.JobStatusCompleted,
	}, nil
}

// crawl fetches, extracts and upserts the page snapshot.
func (s *Service) crawl(ctx context.Context, url string) (*models.CrawledPage, error) {
	fetched, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	content, err := s.processor.Process(fetched.HTML, fetched.Title)
	if err != nil {
		return nil, err
	}

	page := &models.CrawledPage{
		ID:       common.NewPageID(),
		URL:      url,
		Title:    content.Title,
		Content:  fetched.HTML,
		Markdown: content.Markdown,
		Metadata: content.Metadata,
	}
	page, err = s.pages.UpsertPage(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to save page snapshot: %w", err)
	}
	return page, nil
}

// failJob records the failure on the job row. Storage errors here are
// logged, not returned; the original crawl error is what the caller needs.
func (s *Service) failJob(ctx context.Context, job *models.CrawlJob, cause error) {
	if err := job.Finish(models.JobStatusFailed, cause.Error()); err != nil {
		s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Job already finalized")
		return
	}
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		s.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to record job failure")
	}
	s.logger.Warn().Str("job_id", job.ID).Str("url", job.URL).Err(cause).Msg("Crawl failed")
}

// Shutdown releases the fetcher's underlying resources.
func (s *Service) Shutdown() {
	s.fetcher.Shutdown()
}
