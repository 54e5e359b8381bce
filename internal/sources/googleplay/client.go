package googleplay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/recensio/internal/common"
	"github.com/ternarybob/recensio/internal/models"
)

// SourceLabel is the platform name used in canonical records and summaries.
const SourceLabel = "Google Play"

// Client fetches Google Play reviews through the cursor-paginated review
// endpoint: each call returns up to page_size reviews (newest first) plus an
// opaque continuation token for the next call.
type Client struct {
	config     *common.GooglePlayConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     arbor.ILogger
}

// NewClient creates a Google Play review client from configuration.
func NewClient(config *common.GooglePlayConfig, logger arbor.ILogger) *Client {
	rps := config.RateLimit
	if rps <= 0 {
		rps = 5
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		logger:  logger,
	}
}

// Label implements interfaces.ReviewFetcher.
func (c *Client) Label() string {
	return SourceLabel
}

// FetchRegion pages through reviews for appID in one region until the window
// cutoff, the safety cap, or the end of the cursor is reached. The cutoff
// check happens per entry, so a page that straddles the cutoff still
// contributes its in-window entries.
func (c *Client) FetchRegion(ctx context.Context, appID, region string, cutoff time.Time) ([]models.ReviewRecord, error) {
	if appID == "" {
		return []models.ReviewRecord{}, nil
	}

	maxPerRegion := c.config.MaxPerRegion
	if maxPerRegion <= 0 {
		maxPerRegion = 2000
	}

	var collected []models.ReviewRecord
	token := ""

	for {
		page, err := c.fetchPage(ctx, appID, region, token)
		if err != nil {
			return nil, fmt.Errorf("google play fetch failed for %s/%s: %w", appID, region, err)
		}

		if len(page.Reviews) == 0 {
			break
		}

		pageOldest := page.Reviews[0].At
		for _, entry := range page.Reviews {
			if entry.At.Before(pageOldest) {
				pageOldest = entry.At
			}
			if entry.At.Before(cutoff) {
				continue
			}
			if record, ok := adaptEntry(entry, region); ok {
				collected = append(collected, record)
			}
		}

		if pageOldest.Before(cutoff) {
			break
		}
		if page.NextToken == "" {
			break
		}
		if len(collected) >= maxPerRegion {
			c.logger.Debug().
				Str("app_id", appID).
				Str("region", region).
				Int("collected", len(collected)).
				Msg("Region safety cap reached, stopping pagination")
			break
		}

		token = page.NextToken
	}

	return collected, nil
}

// fetchPage requests a single page from the review endpoint.
func (c *Client) fetchPage(ctx context.Context, appID, region, token string) (*reviewsResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	pageSize := c.config.PageSize
	if pageSize <= 0 {
		pageSize = 200
	}

	params := url.Values{}
	params.Set("appId", appID)
	params.Set("country", region)
	params.Set("lang", "en")
	params.Set("sort", "newest")
	params.Set("count", strconv.Itoa(pageSize))
	if token != "" {
		params.Set("token", token)
	}

	reqURL := fmt.Sprintf("%s?%s", c.config.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("review endpoint returned status %d", resp.StatusCode)
	}

	var page reviewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &page, nil
}

// adaptEntry maps a source-native entry to the canonical record shape.
// The brand is attached later by the aggregator.
func adaptEntry(entry reviewEntry, region string) (models.ReviewRecord, bool) {
	text := strings.TrimSpace(entry.Content)
	if text == "" {
		return models.ReviewRecord{}, false
	}

	user := entry.UserName
	if user == "" {
		user = "Anonymous"
	}

	return models.ReviewRecord{
		Text:       text,
		Rating:     entry.Score,
		Date:       entry.At.Format("2006-01-02"),
		SourceUser: user,
		Platform:   fmt.Sprintf("%s (%s)", SourceLabel, strings.ToUpper(region)),
	}, true
}
