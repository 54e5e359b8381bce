package appstore

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/recensio/internal/common"
)

func testConfig(baseURL string) *common.AppStoreConfig {
	return &common.AppStoreConfig{
		Enabled:        true,
		BaseURL:        baseURL,
		MaxPages:       10,
		RequestTimeout: 5 * time.Second,
		RateLimit:      1000,
	}
}

func feedEntryJSON(updated time.Time, rating, author, content string) string {
	return fmt.Sprintf(`{
		"updated": {"label": %q},
		"im:rating": {"label": %q},
		"author": {"name": {"label": %q}},
		"content": {"label": %q}
	}`, updated.Format(time.RFC3339), rating, author, content)
}

func TestClient_FetchRegionWalksPages(t *testing.T) {
	now := time.Now()
	cutoff := now.AddDate(0, -6, 0)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/us/rss/customerreviews/page=1/id=1234/sortby=mostrecent/json":
			fmt.Fprintf(w, `{"feed": {"entry": [%s, %s]}}`,
				feedEntryJSON(now, "5", "alex", "First review"),
				feedEntryJSON(now.Add(-time.Hour), "4", "sam", "Second review"))
		case "/us/rss/customerreviews/page=2/id=1234/sortby=mostrecent/json":
			fmt.Fprintf(w, `{"feed": {"entry": [%s]}}`,
				feedEntryJSON(now.Add(-2*time.Hour), "3", "kim", "Third review"))
		case "/us/rss/customerreviews/page=3/id=1234/sortby=mostrecent/json":
			fmt.Fprint(w, `{"feed": {}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), common.GetLogger())

	records, err := client.FetchRegion(context.Background(), "1234", "us", cutoff)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "First review", records[0].Text)
	assert.Equal(t, 5, records[0].Rating)
	assert.Equal(t, "App Store (US)", records[0].Platform)
	assert.Equal(t, "kim", records[2].SourceUser)
}

func TestClient_FetchRegionStopsAtCutoff(t *testing.T) {
	now := time.Now()
	cutoff := now.AddDate(0, -6, 0)

	var pagesServed int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		// Page straddles the cutoff: the fresh entry is kept, the stale one
		// ends the walk.
		fmt.Fprintf(w, `{"feed": {"entry": [%s, %s]}}`,
			feedEntryJSON(now, "5", "alex", "Recent review"),
			feedEntryJSON(now.AddDate(-1, 0, 0), "1", "sam", "Ancient review"))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), common.GetLogger())

	records, err := client.FetchRegion(context.Background(), "1234", "us", cutoff)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "Recent review", records[0].Text)
	assert.Equal(t, 1, pagesServed)
}

func TestClient_FetchRegionSingleEntryObject(t *testing.T) {
	now := time.Now()
	cutoff := now.AddDate(0, -6, 0)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/us/rss/customerreviews/page=1/id=1234/sortby=mostrecent/json" {
			// A page with exactly one review serves "entry" as a bare object.
			fmt.Fprintf(w, `{"feed": {"entry": %s}}`,
				feedEntryJSON(now, "4", "alex", "Only review"))
			return
		}
		fmt.Fprint(w, `{"feed": {}}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), common.GetLogger())

	records, err := client.FetchRegion(context.Background(), "1234", "us", cutoff)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Only review", records[0].Text)
}

func TestClient_FetchRegionSkipsMalformedEntries(t *testing.T) {
	now := time.Now()
	cutoff := now.AddDate(0, -6, 0)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/us/rss/customerreviews/page=1/id=1234/sortby=mostrecent/json" {
			fmt.Fprintf(w, `{"feed": {"entry": [
				{"updated": {"label": "not-a-date"}, "content": {"label": "Broken"}},
				%s,
				{"updated": {"label": %q}, "im:rating": {"label": "five"}, "content": {"label": "Bad rating"}},
				{"updated": {"label": %q}, "im:rating": {"label": "3"}, "content": {"label": ""}}
			]}}`,
				feedEntryJSON(now, "5", "alex", "Good review"),
				now.Format(time.RFC3339), now.Format(time.RFC3339))
			return
		}
		fmt.Fprint(w, `{"feed": {}}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), common.GetLogger())

	records, err := client.FetchRegion(context.Background(), "1234", "us", cutoff)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Good review", records[0].Text)
}

func TestClient_FetchRegionFeedFailureIsNotAnError(t *testing.T) {
	now := time.Now()
	cutoff := now.AddDate(0, -6, 0)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/us/rss/customerreviews/page=1/id=1234/sortby=mostrecent/json" {
			fmt.Fprintf(w, `{"feed": {"entry": [%s]}}`,
				feedEntryJSON(now, "5", "alex", "Kept review"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), common.GetLogger())

	records, err := client.FetchRegion(context.Background(), "1234", "us", cutoff)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Kept review", records[0].Text)
}

func TestClient_FetchRegionEmptyAppID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty app id")
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), common.GetLogger())

	records, err := client.FetchRegion(context.Background(), "", "us", time.Now())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecodeEntries(t *testing.T) {
	assert.Nil(t, decodeEntries(nil))
	assert.Nil(t, decodeEntries([]byte(`"garbage`)))

	entries := decodeEntries([]byte(`[{"content": {"label": "a"}}, {"content": {"label": "b"}}]`))
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Content.Label)

	single := decodeEntries([]byte(`{"content": {"label": "solo"}}`))
	require.Len(t, single, 1)
	assert.Equal(t, "solo", single[0].Content.Label)
}
