package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrawl/internal/interfaces"
	"github.com/ternarybob/scrawl/internal/models"
)

// CrawlerHandler handles ad-hoc crawls and the page/job read surface.
type CrawlerHandler struct {
	crawler  interfaces.CrawlerService
	pages    interfaces.PageStorage
	jobs     interfaces.JobStorage
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewCrawlerHandler creates a new crawler handler
func NewCrawlerHandler(crawler interfaces.CrawlerService, pages interfaces.PageStorage, jobs interfaces.JobStorage, logger arbor.ILogger) *CrawlerHandler {
	return &CrawlerHandler{
		crawler:  crawler,
		pages:    pages,
		jobs:     jobs,
		validate: validator.New(),
		logger:   logger,
	}
}

// CrawlHandler runs one crawl for a bare URL, no scheduled task involved.
// The crawl runs synchronously; the response carries the job and page ids.
func (h *CrawlerHandler) CrawlHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.CrawlRequest
	if !DecodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "A valid url is required")
		return
	}

	result, err := h.crawler.Execute(r.Context(), req.URL)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteData(w, result)
}

// ListPagesHandler returns all page snapshots, newest first.
func (h *CrawlerHandler) ListPagesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	pages, err := h.pages.ListPages(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteData(w, pages)
}

// GetPageHandler returns one page snapshot by id.
func (h *CrawlerHandler) GetPageHandler(w http.ResponseWriter, r *http.Request, pageID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	page, err := h.pages.GetPage(r.Context(), pageID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Page not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteData(w, page)
}

// DeletePageHandler removes a page snapshot. Job history is untouched.
func (h *CrawlerHandler) DeletePageHandler(w http.ResponseWriter, r *http.Request, pageID string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	if _, err := h.pages.GetPage(r.Context(), pageID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Page not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.pages.DeletePage(r.Context(), pageID); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info().Str("page_id", pageID).Msg("Page snapshot deleted")
	WriteSuccess(w, "Page deleted")
}

// ListJobsHandler returns the crawl attempt history, newest first.
func (h *CrawlerHandler) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	jobs, err := h.jobs.ListJobs(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteData(w, jobs)
}
