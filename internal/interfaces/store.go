package interfaces

import (
	"time"

	"github.com/ternarybob/recensio/internal/models"
)

// JobStore owns the process-wide job_id -> job record mapping. It is the only
// state shared between the submission path and the background executor, so
// every operation must be safe for concurrent use and reads must return a
// consistent snapshot.
type JobStore interface {
	// Submit registers a new job in the pending state. Submitting an id that
	// already exists is a conflict.
	Submit(jobID string) (*models.Job, error)

	// Start transitions a pending job to running.
	Start(jobID string) error

	// Finish merges the pipeline result into the record and sets the terminal
	// status from the result. Finishing an already-terminal job is an error.
	Finish(jobID string, result *models.JobResult) error

	// Get returns a snapshot of the job record, or false when the id is
	// unknown. Unknown is distinct from every defined state.
	Get(jobID string) (*models.Job, bool)

	// PurgeOlderThan removes terminal jobs created before the cutoff and
	// returns the removed ids.
	PurgeOlderThan(cutoff time.Time) []string
}
