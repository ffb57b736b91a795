package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Scheduled tasks
	mux.HandleFunc("/api/tasks", s.handleTasksRoute)  // GET (list), POST (create)
	mux.HandleFunc("/api/tasks/", s.handleTaskRoutes) // GET/PUT/DELETE /{id}, POST /{id}/run

	// API routes - Crawler
	mux.HandleFunc("/api/crawl", s.app.CrawlerHandler.CrawlHandler) // POST - ad-hoc crawl by URL
	mux.HandleFunc("/api/pages", s.app.CrawlerHandler.ListPagesHandler)
	mux.HandleFunc("/api/pages/", s.handlePageRoutes) // GET/DELETE /{id}
	mux.HandleFunc("/api/jobs", s.app.CrawlerHandler.ListJobsHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleTasksRoute routes /api/tasks requests (list and create)
func (s *Server) handleTasksRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.app.TaskHandler.ListTasksHandler(w, r)
	case "POST":
		s.app.TaskHandler.CreateTaskHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleTaskRoutes routes /api/tasks/{id} and /api/tasks/{id}/run
func (s *Server) handleTaskRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	if path == "" {
		http.Error(w, "Task ID is required", http.StatusBadRequest)
		return
	}

	// POST /api/tasks/{id}/run
	if taskID, ok := strings.CutSuffix(path, "/run"); ok {
		s.app.TaskHandler.RunTaskHandler(w, r, taskID)
		return
	}

	if strings.Contains(path, "/") {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case "GET":
		s.app.TaskHandler.GetTaskHandler(w, r, path)
	case "PUT":
		s.app.TaskHandler.UpdateTaskHandler(w, r, path)
	case "DELETE":
		s.app.TaskHandler.DeleteTaskHandler(w, r, path)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handlePageRoutes routes /api/pages/{id} requests
func (s *Server) handlePageRoutes(w http.ResponseWriter, r *http.Request) {
	pageID := strings.TrimPrefix(r.URL.Path, "/api/pages/")
	if pageID == "" || strings.Contains(pageID, "/") {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case "GET":
		s.app.CrawlerHandler.GetPageHandler(w, r, pageID)
	case "DELETE":
		s.app.CrawlerHandler.DeletePageHandler(w, r, pageID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
