package googleplay

import "time"

// reviewsResponse is one page of the cursor-paginated review endpoint.
// An empty nextToken means the cursor is exhausted.
type reviewsResponse struct {
	Reviews   []reviewEntry `json:"reviews"`
	NextToken string        `json:"nextToken"`
}

// reviewEntry is the source-native review shape.
type reviewEntry struct {
	ID       string    `json:"id"`
	UserName string    `json:"userName"`
	Content  string    `json:"content"`
	Score    int       `json:"score"`
	At       time.Time `json:"at"`
}
