package harvest

import (
	"context"
	"time"

	"github.com/ternarybob/recensio/internal/models"
)

// harvestBrand runs every enabled source for one brand and returns the union
// of normalized records with the brand name attached. A source whose store
// identifier is absent is skipped for this brand - that is "source not
// applicable", not an error. Sources run sequentially; each one fans out
// across regions internally.
func (s *Service) harvestBrand(ctx context.Context, brand models.BrandRequest, cutoff time.Time) []models.ReviewRecord {
	name := brand.ResolvedName()
	androidID := models.NormalizeAndroidID(brand.AndroidID)

	poolSize := s.harvestConfig.PoolSize(len(s.harvestConfig.Regions))

	var all []models.ReviewRecord

	for _, src := range s.sources {
		appID := src.appID(brand, androidID)
		if appID == "" {
			s.logger.Debug().
				Str("brand", name).
				Str("source", src.fetcher.Label()).
				Msg("No store identifier, skipping source")
			continue
		}

		s.logger.Info().
			Str("brand", name).
			Str("source", src.fetcher.Label()).
			Str("app_id", appID).
			Msg("Harvesting source")

		records := fanOutRegions(ctx, src.fetcher, appID, s.harvestConfig.Regions, poolSize, cutoff, s.logger)
		for i := range records {
			records[i].Brand = name
		}
		all = append(all, records...)
	}

	return all
}
