package models

import "time"

// JobStatus is the lifecycle state of a harvest job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job is the lifecycle record tracked by the job store and returned to a
// polling caller. Once a job reaches a terminal state the record is frozen.
type Job struct {
	ID        string     `json:"id"`
	Status    JobStatus  `json:"status"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	// Populated on completion
	FilePath      string         `json:"file_path,omitempty"`
	Summary       string         `json:"summary,omitempty"`
	BrandNames    []string       `json:"brand_names,omitempty"`
	SampleReviews []ReviewRecord `json:"sample_reviews,omitempty"`
}

// JobResult is what the harvest pipeline hands back to the job store when a
// run finishes. The store merges it into the job record and sets the terminal
// status from Status.
type JobResult struct {
	Status        JobStatus      `json:"status"`
	Message       string         `json:"message"`
	FilePath      string         `json:"file_path,omitempty"`
	Summary       string         `json:"summary,omitempty"`
	BrandNames    []string       `json:"brand_names,omitempty"`
	SampleReviews []ReviewRecord `json:"sample_reviews,omitempty"`
}

// IsTerminal returns true once the job can no longer change state.
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// Clone returns a deep copy of the job so readers never observe a record the
// executor is still mutating.
func (j *Job) Clone() *Job {
	clone := *j
	if j.StartedAt != nil {
		t := *j.StartedAt
		clone.StartedAt = &t
	}
	if j.EndedAt != nil {
		t := *j.EndedAt
		clone.EndedAt = &t
	}
	if j.BrandNames != nil {
		clone.BrandNames = append([]string(nil), j.BrandNames...)
	}
	if j.SampleReviews != nil {
		clone.SampleReviews = append([]ReviewRecord(nil), j.SampleReviews...)
	}
	return &clone
}
