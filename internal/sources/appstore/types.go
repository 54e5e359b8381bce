package appstore

import "encoding/json"

// feedResponse is the JSON rendering of the customer-reviews Atom feed.
type feedResponse struct {
	Feed feedBody `json:"feed"`
}

// feedBody holds the entries. "entry" is an array on normal pages but a bare
// object when a page carries exactly one review, so it is decoded lazily.
type feedBody struct {
	Entry json.RawMessage `json:"entry"`
}

// label is the {"label": "..."} wrapper the feed puts around every value.
type label struct {
	Label string `json:"label"`
}

// feedEntry is the source-native review shape.
type feedEntry struct {
	Updated label `json:"updated"`
	Rating  label `json:"im:rating"`
	Author  struct {
		Name label `json:"name"`
	} `json:"author"`
	Content label `json:"content"`
}

// decodeEntries handles the array-or-object shape of feed.entry.
func decodeEntries(raw json.RawMessage) []feedEntry {
	if len(raw) == 0 {
		return nil
	}

	var entries []feedEntry
	if err := json.Unmarshal(raw, &entries); err == nil {
		return entries
	}

	var single feedEntry
	if err := json.Unmarshal(raw, &single); err == nil {
		return []feedEntry{single}
	}

	return nil
}
