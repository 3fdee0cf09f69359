package domain

// Brand is catalog metadata for a brand referenced by queued jobs.
// Sourced from the relational store; cached in memory by the application.
type Brand struct {
	ID          int64
	DisplayName string
	PageID      string
	Category    string
}

// UnknownBrandLabel is the display placeholder for brand references that
// cannot be resolved against the catalog.
const UnknownBrandLabel = "Unknown"
