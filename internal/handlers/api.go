package handlers

import (
	"net/http"

	"github.com/ternarybob/scrawl/internal/common"
)

// APIHandler handles system endpoints
type APIHandler struct{}

// NewAPIHandler creates a new API handler
func NewAPIHandler() *APIHandler {
	return &APIHandler{}
}

// HealthHandler reports service liveness
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// VersionHandler returns build version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetFullVersion(),
	})
}

// NotFoundHandler is the catch-all for unmatched API routes
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "Not found")
}
