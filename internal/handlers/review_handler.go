package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/recensio/internal/jobs"
	"github.com/ternarybob/recensio/internal/models"
	"github.com/ternarybob/recensio/internal/storage/artifact"
)

// HarvestRequest is the submit payload: the brands to harvest plus an
// optional caller-supplied job id.
type HarvestRequest struct {
	Brands []models.BrandRequest `json:"brands" validate:"required,min=1"`
	JobID  string                `json:"job_id,omitempty"`
}

// ReviewHandler handles HTTP requests for harvest jobs.
type ReviewHandler struct {
	jobService *jobs.Service
	artifacts  *artifact.Writer
	validate   *validator.Validate
	logger     arbor.ILogger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(jobService *jobs.Service, artifacts *artifact.Writer, logger arbor.ILogger) *ReviewHandler {
	return &ReviewHandler{
		jobService: jobService,
		artifacts:  artifacts,
		validate:   validator.New(),
		logger:     logger,
	}
}

// SubmitHandler handles POST /api/reviews. It registers the job and returns
// the job id immediately; harvesting continues in the background.
func (h *ReviewHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req HarvestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "At least one brand is required")
		return
	}

	jobID, err := h.jobService.Submit(req.Brands, req.JobID)
	if err != nil {
		status := http.StatusBadRequest
		if strings.Contains(err.Error(), "already exists") {
			status = http.StatusConflict
		}
		WriteError(w, status, err.Error())
		return
	}

	h.logger.Info().
		Str("job_id", jobID).
		Int("brands", len(req.Brands)).
		Msg("Harvest job submitted")

	WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  jobID,
		"message": "Harvest started",
	})
}

// StatusHandler handles GET /api/jobs/status?job_id=...
func (h *ReviewHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	jobID := r.URL.Query().Get("job_id")
	if jobID == "" {
		WriteError(w, http.StatusBadRequest, "job_id is required")
		return
	}

	job, found := h.jobService.Status(jobID)
	if !found {
		WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	WriteJSON(w, http.StatusOK, job)
}

// ArtifactHandler handles GET /api/jobs/{id}/artifact, streaming the CSV of
// a completed job.
func (h *ReviewHandler) ArtifactHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	// /api/jobs/{id}/artifact
	path := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	jobID := strings.TrimSuffix(path, "/artifact")
	if jobID == "" || jobID == path {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	job, found := h.jobService.Status(jobID)
	if !found {
		WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	if job.Status != models.JobStatusCompleted {
		WriteError(w, http.StatusNotFound, "Job has no artifact")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+jobID+".csv\"")
	http.ServeFile(w, r, h.artifacts.Path(jobID))
}
