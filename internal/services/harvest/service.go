package harvest

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/recensio/internal/common"
	"github.com/ternarybob/recensio/internal/interfaces"
	"github.com/ternarybob/recensio/internal/models"
	"github.com/ternarybob/recensio/internal/sources/appstore"
	"github.com/ternarybob/recensio/internal/sources/googleplay"
	"github.com/ternarybob/recensio/internal/storage/artifact"
)

// source pairs a fetcher with the brand field that carries its identifier.
type source struct {
	fetcher interfaces.ReviewFetcher
	appID   func(brand models.BrandRequest, normalizedAndroidID string) string
}

// Service is the job aggregator: it drives the per-brand harvest, merges and
// deduplicates the results, writes the CSV artifact, and builds the summary
// returned to the job store.
type Service struct {
	harvestConfig *common.HarvestConfig
	sources       []source
	writer        *artifact.Writer
	logger        arbor.ILogger
}

// NewService wires the enabled sources in their fixed traversal order
// (Google Play first, then App Store). Dedup is first-seen wins, so the
// traversal order - brand submission order, then source order, then region
// order, then page order - decides which copy of a duplicate survives.
func NewService(config *common.Config, writer *artifact.Writer, logger arbor.ILogger) *Service {
	s := &Service{
		harvestConfig: &config.Harvest,
		writer:        writer,
		logger:        logger,
	}

	if config.GooglePlay.Enabled {
		s.sources = append(s.sources, source{
			fetcher: googleplay.NewClient(&config.GooglePlay, logger),
			appID: func(_ models.BrandRequest, normalizedAndroidID string) string {
				return normalizedAndroidID
			},
		})
	}
	if config.AppStore.Enabled {
		s.sources = append(s.sources, source{
			fetcher: appstore.NewClient(&config.AppStore, logger),
			appID: func(brand models.BrandRequest, _ string) string {
				return brand.AppleID
			},
		})
	}

	return s
}

// NewServiceWithSources builds a Service around explicit fetchers. Used by
// tests to substitute stub sources.
func NewServiceWithSources(harvestConfig *common.HarvestConfig, writer *artifact.Writer, logger arbor.ILogger, play, store interfaces.ReviewFetcher) *Service {
	s := &Service{
		harvestConfig: harvestConfig,
		writer:        writer,
		logger:        logger,
	}

	if play != nil {
		s.sources = append(s.sources, source{
			fetcher: play,
			appID: func(_ models.BrandRequest, normalizedAndroidID string) string {
				return normalizedAndroidID
			},
		})
	}
	if store != nil {
		s.sources = append(s.sources, source{
			fetcher: store,
			appID: func(brand models.BrandRequest, _ string) string {
				return brand.AppleID
			},
		})
	}

	return s
}

// Run implements interfaces.Harvester. It always returns a terminal result:
// an empty harvest is a failed result, not an error. Only pipeline-fatal
// problems (the artifact cannot be written) come back as an error, for the
// job executor to convert into a failed record.
func (s *Service) Run(ctx context.Context, jobID string, brands []models.BrandRequest) (*models.JobResult, error) {
	s.logger.Info().
		Str("job_id", jobID).
		Int("brands", len(brands)).
		Msg("Starting harvest job")

	cutoff := s.harvestConfig.CutoffDate(time.Now())

	var all []models.ReviewRecord
	for _, brand := range brands {
		if brand.ResolvedName() == "" {
			s.logger.Debug().Msg("Brand request without a name, skipping")
			continue
		}
		all = append(all, s.harvestBrand(ctx, brand, cutoff)...)
	}

	deduped := dedupe(all)

	if len(deduped) == 0 {
		s.logger.Warn().
			Str("job_id", jobID).
			Msg("Harvest yielded no reviews")
		return &models.JobResult{
			Status:  models.JobStatusFailed,
			Message: "No data collected",
		}, nil
	}

	filePath, err := s.writer.Write(jobID, deduped)
	if err != nil {
		return nil, fmt.Errorf("failed to write artifact: %w", err)
	}

	summary, brandNames := buildSummary(deduped)

	s.logger.Info().
		Str("job_id", jobID).
		Int("reviews", len(deduped)).
		Int("duplicates_removed", len(all)-len(deduped)).
		Str("file_path", filePath).
		Msg("Harvest job completed")

	return &models.JobResult{
		Status:        models.JobStatusCompleted,
		Message:       "Harvest successful",
		FilePath:      filePath,
		Summary:       summary,
		BrandNames:    brandNames,
		SampleReviews: sampleReviews(deduped, s.harvestConfig.SampleSize),
	}, nil
}

// dedupe removes records with an identical (text, source_user, date, brand)
// tuple, keeping the first-seen copy.
func dedupe(records []models.ReviewRecord) []models.ReviewRecord {
	seen := make(map[string]struct{}, len(records))
	deduped := make([]models.ReviewRecord, 0, len(records))
	for _, record := range records {
		key := record.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, record)
	}
	return deduped
}

// buildSummary renders one line per distinct brand (in first-seen order) with
// the per-source review counts, matched case-insensitively against the
// platform label.
func buildSummary(records []models.ReviewRecord) (string, []string) {
	type counts struct {
		play  int
		store int
	}

	perBrand := make(map[string]*counts)
	var brandNames []string

	for _, record := range records {
		c, ok := perBrand[record.Brand]
		if !ok {
			c = &counts{}
			perBrand[record.Brand] = c
			brandNames = append(brandNames, record.Brand)
		}

		platform := strings.ToLower(record.Platform)
		if strings.Contains(platform, strings.ToLower(googleplay.SourceLabel)) {
			c.play++
		}
		if strings.Contains(platform, strings.ToLower(appstore.SourceLabel)) {
			c.store++
		}
	}

	lines := make([]string, 0, len(brandNames))
	for _, brand := range brandNames {
		c := perBrand[brand]
		lines = append(lines, fmt.Sprintf("%s - Playstore Reviews %d - App Store %d", brand, c.play, c.store))
	}

	return strings.Join(lines, "\n"), brandNames
}

// sampleReviews draws an unweighted random sample of up to n records.
func sampleReviews(records []models.ReviewRecord, n int) []models.ReviewRecord {
	if n <= 0 {
		n = 5
	}
	if n > len(records) {
		n = len(records)
	}

	indices := rand.Perm(len(records))[:n]
	sample := make([]models.ReviewRecord, 0, n)
	for _, i := range indices {
		sample = append(sample, records[i])
	}
	return sample
}
