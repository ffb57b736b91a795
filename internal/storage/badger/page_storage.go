package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrawl/internal/interfaces"
	"github.com/ternarybob/scrawl/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// PageStorage implements the PageStorage interface for Badger
type PageStorage struct {
	db     *BadgerDB
	logger arbor.ILogger

	upsertMu sync.Mutex // serializes the URL lookup + write pair in UpsertPage
}

// NewPageStorage creates a new PageStorage instance
func NewPageStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PageStorage {
	return &PageStorage{
		db:     db,
		logger: logger,
	}
}

// UpsertPage creates or overwrites the snapshot for the page's URL.
// The URL is the logical key: an existing row keeps its ID and CreatedAt,
// only title, content, markdown, metadata and UpdatedAt change. The lookup
// and the write are serialized so concurrent crawls of the same URL cannot
// both miss the lookup and insert two rows.
func (s *PageStorage) UpsertPage(ctx context.Context, page *models.CrawledPage) (*models.CrawledPage, error) {
	if page.URL == "" {
		return nil, fmt.Errorf("page URL is required")
	}

	s.upsertMu.Lock()
	defer s.upsertMu.Unlock()

	now := time.Now()

	existing, err := s.GetPageByURL(ctx, page.URL)
	switch {
	case err == nil:
		page.ID = existing.ID
		page.CreatedAt = existing.CreatedAt
	case errors.Is(err, interfaces.ErrNotFound):
		if page.ID == "" {
			return nil, fmt.Errorf("page ID is required")
		}
		page.CreatedAt = now
	default:
		return nil, err
	}
	page.UpdatedAt = now

	if err := s.db.Store().Upsert(page.ID, page); err != nil {
		return nil, fmt.Errorf("failed to upsert page: %w", err)
	}
	return page, nil
}

func (s *PageStorage) GetPage(ctx context.Context, id string) (*models.CrawledPage, error) {
	var page models.CrawledPage
	if err := s.db.Store().Get(id, &page); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("page %s: %w", id, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	return &page, nil
}

func (s *PageStorage) GetPageByURL(ctx context.Context, url string) (*models.CrawledPage, error) {
	var pages []models.CrawledPage
	if err := s.db.Store().Find(&pages, badgerhold.Where("URL").Eq(url)); err != nil {
		return nil, fmt.Errorf("failed to find page: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("page for url %s: %w", url, interfaces.ErrNotFound)
	}
	return &pages[0], nil
}

func (s *PageStorage) ListPages(ctx context.Context) ([]*models.CrawledPage, error) {
	var pages []models.CrawledPage
	// Newest first
	if err := s.db.Store().Find(&pages, badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()); err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	result := make([]*models.CrawledPage, len(pages))
	for i := range pages {
		result[i] = &pages[i]
	}
	return result, nil
}

func (s *PageStorage) DeletePage(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.CrawledPage{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete page: %w", err)
	}
	return nil
}
