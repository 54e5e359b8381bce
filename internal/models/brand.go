package models

import "strings"

// BrandRequest describes one brand to harvest. Either store identifier may be
// absent; a missing identifier skips that source for the brand, it is not an
// error. A request with no resolvable name is skipped entirely.
type BrandRequest struct {
	Name        string `json:"name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	Website     string `json:"website,omitempty"`
	Description string `json:"description,omitempty"`
	AndroidID   string `json:"android_id,omitempty"`
	AppleID     string `json:"apple_id,omitempty"`
	IsMain      bool   `json:"is_main,omitempty"`
}

// ResolvedName returns the brand display name, preferring "name" over
// "company_name". Empty means the brand cannot be harvested.
func (b *BrandRequest) ResolvedName() string {
	if b.Name != "" {
		return b.Name
	}
	return b.CompanyName
}

// NormalizeAndroidID strips a scheme-like prefix from an Android package id,
// e.g. "gp:com.acme.app" -> "com.acme.app". Identifiers without a colon are
// returned unchanged, so normalization is idempotent.
func NormalizeAndroidID(id string) string {
	if idx := strings.LastIndex(id, ":"); idx >= 0 {
		return strings.TrimSpace(id[idx+1:])
	}
	return strings.TrimSpace(id)
}
