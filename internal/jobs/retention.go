package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/recensio/internal/common"
	"github.com/ternarybob/recensio/internal/interfaces"
	"github.com/ternarybob/recensio/internal/storage/artifact"
)

// RetentionSweeper periodically purges terminal job records and their CSV
// artifacts once they exceed the configured age. Pending and running jobs
// are left alone.
type RetentionSweeper struct {
	store     interfaces.JobStore
	artifacts *artifact.Writer
	cron      *cron.Cron
	maxAge    time.Duration
	logger    arbor.ILogger
}

// NewRetentionSweeper builds the sweeper from configuration. Returns nil
// (and no error) when retention is disabled.
func NewRetentionSweeper(config *common.RetentionConfig, store interfaces.JobStore, artifacts *artifact.Writer, logger arbor.ILogger) (*RetentionSweeper, error) {
	if !config.Enabled {
		return nil, nil
	}

	maxAge, err := time.ParseDuration(config.MaxAge)
	if err != nil {
		return nil, fmt.Errorf("invalid retention max_age %q: %w", config.MaxAge, err)
	}

	sweeper := &RetentionSweeper{
		store:     store,
		artifacts: artifacts,
		cron:      cron.New(cron.WithSeconds()),
		maxAge:    maxAge,
		logger:    logger,
	}

	if _, err := sweeper.cron.AddFunc(config.Schedule, sweeper.Sweep); err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", config.Schedule, err)
	}

	return sweeper, nil
}

// Start begins the scheduled sweeps.
func (r *RetentionSweeper) Start() {
	r.cron.Start()
	r.logger.Info().
		Dur("max_age", r.maxAge).
		Msg("Job retention sweeper started")
}

// Stop halts the scheduler and waits for an in-flight sweep to finish.
func (r *RetentionSweeper) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// Sweep removes expired terminal jobs and their artifacts.
func (r *RetentionSweeper) Sweep() {
	cutoff := time.Now().Add(-r.maxAge)

	for _, jobID := range r.store.PurgeOlderThan(cutoff) {
		if err := r.artifacts.Remove(jobID); err != nil {
			r.logger.Warn().
				Err(err).
				Str("job_id", jobID).
				Msg("Failed to remove expired artifact")
		}
	}
}
