package jobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/recensio/internal/interfaces"
	"github.com/ternarybob/recensio/internal/models"
)

// Store is the in-memory job lifecycle store. It is constructed once at
// process start and handed to both the submission path and the background
// executor - never reached through package globals. All mutation happens
// under the lock and reads hand out deep copies, so a polling caller can
// never observe a torn update.
type Store struct {
	mu     sync.RWMutex
	jobs   map[string]*models.Job
	logger arbor.ILogger
}

// NewStore creates an empty job store.
func NewStore(logger arbor.ILogger) *Store {
	return &Store{
		jobs:   make(map[string]*models.Job),
		logger: logger,
	}
}

var _ interfaces.JobStore = (*Store)(nil)

// Submit registers a new job in the pending state.
func (s *Store) Submit(jobID string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[jobID]; exists {
		return nil, fmt.Errorf("job %s already exists", jobID)
	}

	job := &models.Job{
		ID:        jobID,
		Status:    models.JobStatusPending,
		Message:   "Job submitted",
		CreatedAt: time.Now(),
	}
	s.jobs[jobID] = job

	s.logger.Info().
		Str("job_id", jobID).
		Msg("Job registered")

	return job.Clone(), nil
}

// Start transitions a pending job to running.
func (s *Store) Start(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return fmt.Errorf("job %s not found", jobID)
	}
	if job.IsTerminal() {
		return fmt.Errorf("job %s is already %s", jobID, job.Status)
	}

	now := time.Now()
	job.Status = models.JobStatusRunning
	job.Message = "Harvest in progress"
	job.StartedAt = &now

	return nil
}

// Finish merges the pipeline result into the record and seals it with the
// terminal status carried by the result.
func (s *Store) Finish(jobID string, result *models.JobResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return fmt.Errorf("job %s not found", jobID)
	}
	if job.IsTerminal() {
		return fmt.Errorf("job %s is already %s", jobID, job.Status)
	}

	now := time.Now()
	job.Status = result.Status
	job.Message = result.Message
	job.FilePath = result.FilePath
	job.Summary = result.Summary
	job.BrandNames = append([]string(nil), result.BrandNames...)
	job.SampleReviews = append([]models.ReviewRecord(nil), result.SampleReviews...)
	job.EndedAt = &now

	s.logger.Info().
		Str("job_id", jobID).
		Str("status", string(result.Status)).
		Msg("Job finished")

	return nil
}

// Get returns a snapshot of the job record.
func (s *Store) Get(jobID string) (*models.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, false
	}
	return job.Clone(), true
}

// Stats returns the number of jobs per status.
func (s *Store) Stats() map[models.JobStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[models.JobStatus]int)
	for _, job := range s.jobs {
		stats[job.Status]++
	}
	return stats
}

// PurgeOlderThan removes terminal jobs created before the cutoff and returns
// the removed ids. Pending and running jobs are never purged.
func (s *Store) PurgeOlderThan(cutoff time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for id, job := range s.jobs {
		if job.IsTerminal() && job.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed = append(removed, id)
		}
	}

	if len(removed) > 0 {
		s.logger.Info().
			Int("count", len(removed)).
			Msg("Purged expired jobs")
	}

	return removed
}
