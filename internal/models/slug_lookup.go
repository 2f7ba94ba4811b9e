package models

import "time"

// Slug lookup outcome constants
const (
	OutcomeResolved = "resolved"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// SlugLookup represents a per-slug hit count by outcome.
type SlugLookup struct {
	Slug       string
	Outcome    string
	Count      int64
	LastSeenAt time.Time
}
