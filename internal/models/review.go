package models

import "strings"

// ReviewRecord is the canonical, source-agnostic review shape produced by the
// source adapters and used for deduplication and CSV output.
type ReviewRecord struct {
	Text       string `json:"text"`
	Rating     int    `json:"rating"`
	Date       string `json:"date"` // calendar date, "2006-01-02"
	SourceUser string `json:"source_user"`
	Platform   string `json:"platform"` // e.g. "Google Play (US)"
	Brand      string `json:"brand"`
}

// DedupKey identifies a review for deduplication purposes. Two records with
// the same (text, source_user, date, brand) tuple are the same review, even
// when harvested from different regions or pages.
func (r *ReviewRecord) DedupKey() string {
	return strings.Join([]string{r.Text, r.SourceUser, r.Date, r.Brand}, "\x1f")
}

// CSVHeader is the column order of the per-job artifact.
var CSVHeader = []string{"text", "rating", "date", "source_user", "platform", "brand"}
