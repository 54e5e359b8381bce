package jobs

import (
	"context"
	"fmt"
	"regexp"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/recensio/internal/common"
	"github.com/ternarybob/recensio/internal/interfaces"
	"github.com/ternarybob/recensio/internal/models"
)

// jobIDPattern keeps caller-supplied ids filesystem-safe, since the id names
// the artifact file.
var jobIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Service owns the job lifecycle: it registers submissions and runs the
// harvest pipeline in a detached, panic-protected goroutine so the submitting
// call returns immediately. The job record always reaches a terminal state -
// pipeline errors and panics both land as a failed record, never as a crash
// or a job stuck in running.
type Service struct {
	store     interfaces.JobStore
	harvester interfaces.Harvester
	logger    arbor.ILogger
}

// NewService creates the job execution service.
func NewService(store interfaces.JobStore, harvester interfaces.Harvester, logger arbor.ILogger) *Service {
	return &Service{
		store:     store,
		harvester: harvester,
		logger:    logger,
	}
}

// Submit registers a job and fires its background execution. When requestedID
// is empty a fresh id is generated; a requested id that is malformed or
// already in use is rejected.
func (s *Service) Submit(brands []models.BrandRequest, requestedID string) (string, error) {
	jobID := requestedID
	if jobID == "" {
		jobID = common.NewJobID()
	}
	if !jobIDPattern.MatchString(jobID) {
		return "", fmt.Errorf("invalid job id %q", jobID)
	}

	if _, err := s.store.Submit(jobID); err != nil {
		return "", err
	}

	// Snapshot the brand list so the caller's slice can't race the executor.
	brandsCopy := append([]models.BrandRequest(nil), brands...)

	common.SafeGo(s.logger, "harvest-"+jobID, func() {
		s.execute(jobID, brandsCopy)
	})

	return jobID, nil
}

// Status returns a snapshot of the job record.
func (s *Service) Status(jobID string) (*models.Job, bool) {
	return s.store.Get(jobID)
}

// execute drives one job from running to a terminal state.
func (s *Service) execute(jobID string, brands []models.BrandRequest) {
	defer func() {
		if r := recover(); r != nil {
			s.fail(jobID, fmt.Sprintf("harvest panicked: %v", r))
			panic(r) // re-raise so SafeGo logs the stack
		}
	}()

	if err := s.store.Start(jobID); err != nil {
		s.logger.Error().
			Err(err).
			Str("job_id", jobID).
			Msg("Failed to start job")
		return
	}

	result, err := s.harvester.Run(context.Background(), jobID, brands)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("job_id", jobID).
			Msg("Harvest pipeline failed")
		s.fail(jobID, err.Error())
		return
	}

	if err := s.store.Finish(jobID, result); err != nil {
		s.logger.Error().
			Err(err).
			Str("job_id", jobID).
			Msg("Failed to finish job")
	}
}

// fail seals the job with a failed status and the given message.
func (s *Service) fail(jobID, message string) {
	err := s.store.Finish(jobID, &models.JobResult{
		Status:  models.JobStatusFailed,
		Message: message,
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("job_id", jobID).
			Msg("Failed to record job failure")
	}
}
