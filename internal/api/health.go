package api

import (
	"net/http"
	"time"

	"strreg/internal/version"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Strings   int       `json:"strings"`
}

// handleHealth reports liveness plus the current record count
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
	}

	n, err := s.registry.Count(r.Context())
	if err != nil {
		s.logger.Error("Health check failed", "error", err.Error())
		resp.Status = "unhealthy"
		WriteJSON(w, resp, http.StatusServiceUnavailable)
		return
	}
	resp.Strings = n

	WriteJSON(w, resp, http.StatusOK)
}
