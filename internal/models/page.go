package models

import "time"

// CrawledPage is the latest known snapshot of a URL's content. At most one
// row exists per URL; re-crawling overwrites title, content, markdown and
// metadata in place while preserving ID and CreatedAt.
type CrawledPage struct {
	ID        string    `json:"id" badgerhold:"key"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`  // Raw rendered HTML
	Markdown  string    `json:"markdown"` // Markdown rendition of the content
	Metadata  string    `json:"metadata"` // JSON-serialized meta tags
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CrawlResult is what a single crawl attempt returns to its caller.
type CrawlResult struct {
	JobID  string    `json:"job_id"`
	PageID string    `json:"page_id"`
	URL    string    `json:"url"`
	Title  string    `json:"title"`
	Status JobStatus `json:"status"`
}

// CrawlRequest is the payload for an ad-hoc crawl.
type CrawlRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// PageMeta is one extracted <meta> tag. The crawler serializes the full
// list into CrawledPage.Metadata.
type PageMeta struct {
	Name     string `json:"name,omitempty"`
	Property string `json:"property,omitempty"`
	Content  string `json:"content,omitempty"`
}
