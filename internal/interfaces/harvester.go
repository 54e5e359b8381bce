package interfaces

import (
	"context"

	"github.com/ternarybob/recensio/internal/models"
)

// Harvester runs the full multi-brand harvest pipeline for one job and
// returns the terminal result. It never returns a non-terminal status: an
// empty harvest is a failed result with an explanatory message, and only
// pipeline-fatal problems (e.g. the artifact cannot be written) surface as
// an error.
type Harvester interface {
	Run(ctx context.Context, jobID string, brands []models.BrandRequest) (*models.JobResult, error)
}
