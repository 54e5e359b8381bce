package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/recensio/internal/models"
)

// ReviewFetcher retrieves reviews for one app in one region, already adapted
// to the canonical record shape (brand is attached later by the aggregator).
// Implementations stop fetching once entries fall behind the cutoff date and
// must bound every network call with a timeout.
type ReviewFetcher interface {
	// Label is the human-readable source name used in platform strings and
	// summary lines, e.g. "Google Play".
	Label() string

	// FetchRegion fetches reviews for appID in a single region, newest first.
	// An empty appID returns an empty slice without making any requests.
	FetchRegion(ctx context.Context, appID, region string, cutoff time.Time) ([]models.ReviewRecord, error)
}
