package harvest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/recensio/internal/common"
	"github.com/ternarybob/recensio/internal/interfaces"
	"github.com/ternarybob/recensio/internal/models"
	"github.com/ternarybob/recensio/internal/storage/artifact"
)

// stubFetcher returns canned records per (appID, region) and tracks the
// requests it saw.
type stubFetcher struct {
	label   string
	records map[string][]models.ReviewRecord // key: appID + "/" + region
	err     error

	mu    sync.Mutex
	calls []string
}

func (f *stubFetcher) Label() string {
	return f.label
}

func (f *stubFetcher) FetchRegion(ctx context.Context, appID, region string, cutoff time.Time) ([]models.ReviewRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, appID+"/"+region)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return f.records[appID+"/"+region], nil
}

func testHarvestConfig(regions ...string) *common.HarvestConfig {
	if len(regions) == 0 {
		regions = []string{"us"}
	}
	return &common.HarvestConfig{
		Regions:      regions,
		CutoffMonths: 6,
		MaxWorkers:   4,
		SampleSize:   5,
	}
}

func newTestService(t *testing.T, config *common.HarvestConfig, play, store *stubFetcher) *Service {
	t.Helper()

	writer := artifact.NewWriter(&common.StorageConfig{DataDir: t.TempDir()}, common.GetLogger())

	// Assign through the interface only when non-nil, so a typed nil does not
	// slip past the nil check in NewServiceWithSources.
	var playFetcher, storeFetcher interfaces.ReviewFetcher
	if play != nil {
		playFetcher = play
	}
	if store != nil {
		storeFetcher = store
	}
	return NewServiceWithSources(config, writer, common.GetLogger(), playFetcher, storeFetcher)
}

func review(text, user, date, platform string) models.ReviewRecord {
	return models.ReviewRecord{
		Text:       text,
		Rating:     4,
		Date:       date,
		SourceUser: user,
		Platform:   platform,
	}
}

func TestService_RunEndToEnd(t *testing.T) {
	play := &stubFetcher{
		label: "Google Play",
		records: map[string][]models.ReviewRecord{
			"com.acme.app/us": {
				review("Love it", "alex", "2026-08-01", "Google Play (US)"),
				review("Solid", "sam", "2026-08-02", "Google Play (US)"),
			},
		},
	}
	store := &stubFetcher{
		label: "App Store",
		records: map[string][]models.ReviewRecord{
			"1234/us": {
				review("Nice app", "kim", "2026-08-03", "App Store (US)"),
			},
		},
	}

	service := newTestService(t, testHarvestConfig("us"), play, store)

	result, err := service.Run(context.Background(), "job_e2e", []models.BrandRequest{
		{Name: "Acme", AndroidID: "gp:com.acme.app", AppleID: "1234"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusCompleted, result.Status)
	assert.Equal(t, "Harvest successful", result.Message)
	assert.Equal(t, "Acme - Playstore Reviews 2 - App Store 1", result.Summary)
	assert.Equal(t, []string{"Acme"}, result.BrandNames)
	assert.Len(t, result.SampleReviews, 3)

	// The Android id was normalized before reaching the fetcher.
	assert.Contains(t, play.calls, "com.acme.app/us")

	data, err := os.ReadFile(result.FilePath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\xEF\xBB\xBF"))
	assert.Contains(t, string(data), "text,rating,date,source_user,platform,brand")
	assert.Contains(t, string(data), "Love it")
}

func TestService_RunDeduplicatesAcrossRegions(t *testing.T) {
	shared := review("Same review", "alex", "2026-08-01", "Google Play (US)")
	sharedSA := shared
	sharedSA.Platform = "Google Play (SA)"

	play := &stubFetcher{
		label: "Google Play",
		records: map[string][]models.ReviewRecord{
			"com.acme.app/us": {shared},
			"com.acme.app/sa": {sharedSA, review("Unique review", "sam", "2026-08-02", "Google Play (SA)")},
		},
	}

	service := newTestService(t, testHarvestConfig("us", "sa"), play, nil)

	result, err := service.Run(context.Background(), "job_dedup", []models.BrandRequest{
		{Name: "Acme", AndroidID: "com.acme.app"},
	})
	require.NoError(t, err)

	// The duplicate survives once; region order decides which copy.
	assert.Equal(t, "Acme - Playstore Reviews 2 - App Store 0", result.Summary)
}

func TestService_RunNoDataCollected(t *testing.T) {
	play := &stubFetcher{label: "Google Play"}

	service := newTestService(t, testHarvestConfig("us"), play, nil)

	result, err := service.Run(context.Background(), "job_empty", []models.BrandRequest{
		{Name: "Acme", AndroidID: "com.acme.app"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusFailed, result.Status)
	assert.Equal(t, "No data collected", result.Message)
	assert.Empty(t, result.FilePath)
}

func TestService_RunSkipsSourceWithoutIdentifier(t *testing.T) {
	play := &stubFetcher{
		label: "Google Play",
		records: map[string][]models.ReviewRecord{
			"com.acme.app/us": {review("Play review", "alex", "2026-08-01", "Google Play (US)")},
		},
	}
	store := &stubFetcher{label: "App Store"}

	service := newTestService(t, testHarvestConfig("us"), play, store)

	result, err := service.Run(context.Background(), "job_skip", []models.BrandRequest{
		{Name: "Acme", AndroidID: "com.acme.app"}, // no Apple id
	})
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusCompleted, result.Status)
	assert.Empty(t, store.calls, "source without an identifier must not be queried")
}

func TestService_RunSkipsNamelessBrand(t *testing.T) {
	play := &stubFetcher{label: "Google Play"}

	service := newTestService(t, testHarvestConfig("us"), play, nil)

	result, err := service.Run(context.Background(), "job_nameless", []models.BrandRequest{
		{AndroidID: "com.acme.app"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusFailed, result.Status)
	assert.Empty(t, play.calls)
}

func TestService_RunRegionFailureIsIsolated(t *testing.T) {
	play := &stubFetcher{
		label: "Google Play",
		records: map[string][]models.ReviewRecord{
			"com.acme.app/us": {review("US review", "alex", "2026-08-01", "Google Play (US)")},
		},
	}

	// A second brand whose fetches all fail must not disturb the first.
	failing := &stubFetcher{
		label: "App Store",
		err:   fmt.Errorf("feed unavailable"),
	}

	service := newTestService(t, testHarvestConfig("us"), play, failing)

	result, err := service.Run(context.Background(), "job_isolated", []models.BrandRequest{
		{Name: "Acme", AndroidID: "com.acme.app", AppleID: "1234"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusCompleted, result.Status)
	assert.Equal(t, "Acme - Playstore Reviews 1 - App Store 0", result.Summary)
}

func TestService_RunMultipleBrandsSummaryOrder(t *testing.T) {
	play := &stubFetcher{
		label: "Google Play",
		records: map[string][]models.ReviewRecord{
			"com.acme.app/us": {review("Acme review", "alex", "2026-08-01", "Google Play (US)")},
			"com.beta.app/us": {review("Beta review", "sam", "2026-08-02", "Google Play (US)")},
		},
	}

	service := newTestService(t, testHarvestConfig("us"), play, nil)

	result, err := service.Run(context.Background(), "job_multi", []models.BrandRequest{
		{Name: "Acme", AndroidID: "com.acme.app"},
		{CompanyName: "Beta Co", AndroidID: "com.beta.app"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Acme", "Beta Co"}, result.BrandNames)
	assert.Equal(t,
		"Acme - Playstore Reviews 1 - App Store 0\nBeta Co - Playstore Reviews 1 - App Store 0",
		result.Summary)
}

func TestService_SampleSizeCapsSamples(t *testing.T) {
	var records []models.ReviewRecord
	for i := 0; i < 10; i++ {
		records = append(records, review(fmt.Sprintf("Review %d", i), "alex", "2026-08-01", "Google Play (US)"))
	}

	play := &stubFetcher{
		label:   "Google Play",
		records: map[string][]models.ReviewRecord{"com.acme.app/us": records},
	}

	config := testHarvestConfig("us")
	config.SampleSize = 3

	service := newTestService(t, config, play, nil)

	result, err := service.Run(context.Background(), "job_sample", []models.BrandRequest{
		{Name: "Acme", AndroidID: "com.acme.app"},
	})
	require.NoError(t, err)

	assert.Len(t, result.SampleReviews, 3)
	for _, sample := range result.SampleReviews {
		assert.Equal(t, "Acme", sample.Brand)
	}
}
