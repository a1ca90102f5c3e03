package api

import (
	"net/http"
)

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.HandleFunc("GET /{$}", s.handleRoot)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /metrics", s.handleMetrics)

	s.router.HandleFunc("POST /strings", s.handleCreateString)
	s.router.HandleFunc("GET /strings", s.handleListStrings)
	// The literal path wins over the {value} wildcard below.
	s.router.HandleFunc("GET /strings/filter-by-natural-language", s.handleNaturalLanguageFilter)
	s.router.HandleFunc("GET /strings/{value}", s.handleGetString)
	s.router.HandleFunc("DELETE /strings/{value}", s.handleDeleteString)
}

// handleRoot is the plain-text liveness response
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("String Registry Service is running\n"))
}
