package models

import "time"

// ResolveResponse contains the result of slug resolution.
type ResolveResponse struct {
	Slug     string `json:"slug"`
	URL      string `json:"url"`
	ShortURL string `json:"short_url"`
}

// DirectoryStatus describes the current directory snapshot for readiness probes.
type DirectoryStatus struct {
	Links     int       `json:"links"`
	ExpiresAt time.Time `json:"expires_at"`
	Fetches   int64     `json:"fetches"`
}
