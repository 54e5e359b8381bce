package harvest

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/recensio/internal/interfaces"
	"github.com/ternarybob/recensio/internal/models"
	"github.com/ternarybob/recensio/internal/services/workers"
)

// fanOutRegions runs one FetchRegion per region concurrently through a
// bounded worker pool and returns the union of the per-region results,
// concatenated in region order. Each task writes into its own result slot, so
// collection is order-stable without extra locking. A failed or empty region
// leaves its slot empty and never disturbs the others.
func fanOutRegions(ctx context.Context, fetcher interfaces.ReviewFetcher, appID string, regions []string, poolSize int, cutoff time.Time, logger arbor.ILogger) []models.ReviewRecord {
	results := make([][]models.ReviewRecord, len(regions))

	pool := workers.NewPool(ctx, poolSize, logger)
	pool.Start()

	for i, region := range regions {
		slot := i
		region := region
		if err := pool.Submit(func(taskCtx context.Context) error {
			records, err := fetcher.FetchRegion(taskCtx, appID, region, cutoff)
			if err != nil {
				// Soft failure: the region contributes nothing, the rest of
				// the fan-out proceeds.
				return fmt.Errorf("%s region %s: %w", fetcher.Label(), region, err)
			}
			results[slot] = records
			return nil
		}); err != nil {
			logger.Warn().
				Err(err).
				Str("region", region).
				Msg("Failed to submit region fetch")
		}
	}

	pool.Wait()

	var union []models.ReviewRecord
	for _, regionRecords := range results {
		union = append(union, regionRecords...)
	}

	logger.Debug().
		Str("source", fetcher.Label()).
		Str("app_id", appID).
		Int("regions", len(regions)).
		Int("failed_regions", len(pool.Errors())).
		Int("reviews", len(union)).
		Msg("Region fan-out finished")

	return union
}
