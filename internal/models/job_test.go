package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJob_IsTerminal(t *testing.T) {
	assert.False(t, (&Job{Status: JobStatusPending}).IsTerminal())
	assert.False(t, (&Job{Status: JobStatusRunning}).IsTerminal())
	assert.True(t, (&Job{Status: JobStatusCompleted}).IsTerminal())
	assert.True(t, (&Job{Status: JobStatusFailed}).IsTerminal())
}

func TestJob_CloneIsDeep(t *testing.T) {
	started := time.Now()
	job := &Job{
		ID:         "job_1",
		Status:     JobStatusCompleted,
		Message:    "Harvest successful",
		CreatedAt:  time.Now(),
		StartedAt:  &started,
		BrandNames: []string{"Acme"},
		SampleReviews: []ReviewRecord{
			{Text: "Great app", Brand: "Acme"},
		},
	}

	clone := job.Clone()
	require.Equal(t, job, clone)

	// Mutating the clone must not reach the original.
	clone.BrandNames[0] = "Other"
	clone.SampleReviews[0].Text = "changed"
	*clone.StartedAt = clone.StartedAt.Add(time.Hour)

	assert.Equal(t, "Acme", job.BrandNames[0])
	assert.Equal(t, "Great app", job.SampleReviews[0].Text)
	assert.Equal(t, started, *job.StartedAt)
}
