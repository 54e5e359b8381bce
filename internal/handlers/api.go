package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/recensio/internal/common"
	"github.com/ternarybob/recensio/internal/jobs"
)

// APIHandler serves the service-level endpoints: health, version and status.
type APIHandler struct {
	store     *jobs.Store
	logger    arbor.ILogger
	startTime time.Time
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(store *jobs.Store, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		store:     store,
		logger:    logger,
		startTime: time.Now(),
	}
}

// HealthHandler handles GET /api/health
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// VersionHandler handles GET /api/version
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.Build,
	})
}

// StatusHandler handles GET /api/status with job counts and runtime info.
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	stats := h.store.Stats()
	jobCounts := make(map[string]int, len(stats))
	for status, count := range stats {
		jobCounts[string(status)] = count
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":    common.GetVersion(),
		"uptime":     time.Since(h.startTime).Round(time.Second).String(),
		"goroutines": common.GetGoroutineCount(),
		"jobs":       jobCounts,
	})
}

// NotFoundHandler handles unmatched routes.
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "Not found")
}
