package appstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/recensio/internal/common"
	"github.com/ternarybob/recensio/internal/models"
)

// SourceLabel is the platform name used in canonical records and summaries.
const SourceLabel = "App Store"

// Client fetches App Store reviews through the public customer-reviews RSS
// feed, which exposes a fixed number of page-numbered feed pages per region.
type Client struct {
	config     *common.AppStoreConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     arbor.ILogger
}

// NewClient creates an App Store review client from configuration.
func NewClient(config *common.AppStoreConfig, logger arbor.ILogger) *Client {
	rps := config.RateLimit
	if rps <= 0 {
		rps = 10
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

// FetchRegion walks feed pages 1..max_pages for appID in one region. Paging
// stops on a non-success status, an empty page, or once a page contains an
// entry older than the cutoff - the current page is always finished first.
// Feed hiccups end the walk with whatever was collected so far; they are not
// errors. A malformed individual entry is skipped without aborting its page.
func (c *Client) FetchRegion(ctx context.Context, appID, region string, cutoff time.Time) ([]models.ReviewRecord, error) {
	if appID == "" {
		return []models.ReviewRecord{}, nil
	}

	maxPages := c.config.MaxPages
	if maxPages <= 0 {
		maxPages = 10
	}

	var collected []models.ReviewRecord

	for page := 1; page <= maxPages; page++ {
		entries, ok := c.fetchPage(ctx, appID, region, page)
		if !ok || len(entries) == 0 {
			break
		}

		stopPaging := false
		for _, entry := range entries {
			record, entryTime, ok := adaptEntry(entry, region)
			if !ok {
				continue
			}
			if entryTime.Before(cutoff) {
				stopPaging = true
				continue
			}
			collected = append(collected, record)
		}

		if stopPaging {
			break
		}
	}

	return collected, nil
}

// fetchPage requests one feed page. Any failure - transport error, bad
// status, undecodable body - reads as "no more pages".
func (c *Client) fetchPage(ctx context.Context, appID, region string, page int) ([]feedEntry, bool) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false
	}

	reqURL := fmt.Sprintf("%s/%s/rss/customerreviews/page=%d/id=%s/sortby=mostrecent/json",
		c.config.BaseURL, region, page, appID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("region", region).
			Int("page", page).
			Msg("App Store feed request failed, stopping pagination")
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		c.logger.Debug().
			Err(err).
			Str("region", region).
			Int("page", page).
			Msg("App Store feed page undecodable, stopping pagination")
		return nil, false
	}

	return decodeEntries(feed.Feed.Entry), true
}

// adaptEntry maps a source-native feed entry to the canonical record shape,
// returning the parsed entry time for the cutoff check. The brand is attached
// later by the aggregator.
func adaptEntry(entry feedEntry, region string) (models.ReviewRecord, time.Time, bool) {
	entryTime, err := time.Parse(time.RFC3339, entry.Updated.Label)
	if err != nil {
		return models.ReviewRecord{}, time.Time{}, false
	}

	rating := 0
	if entry.Rating.Label != "" {
		rating, err = strconv.Atoi(entry.Rating.Label)
		if err != nil {
			return models.ReviewRecord{}, time.Time{}, false
		}
	}

	text := strings.TrimSpace(entry.Content.Label)
	if text == "" {
		return models.ReviewRecord{}, time.Time{}, false
	}

	user := entry.Author.Name.Label
	if user == "" {
		user = "Anonymous"
	}

	return models.ReviewRecord{
		Text:       text,
		Rating:     rating,
		Date:       entryTime.Format("2006-01-02"),
		SourceUser: user,
		Platform:   fmt.Sprintf("%s (%s)", SourceLabel, strings.ToUpper(region)),
	}, entryTime, true
}
