package domain

import "strings"

// SortField selects the business field a queue view is ordered by.
// SortNone ("normal") preserves discovery order from the index scan.
type SortField string

const (
	SortNone      SortField = "normal"
	SortAdCount   SortField = "ad_count"
	SortBrandID   SortField = "brand_id"
	SortCreatedAt SortField = "created_at"
	SortBrandName SortField = "brand_name"
)

// SortOrder is the sort direction for a queue view.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortField normalizes a routing-layer sort field. Empty input means no
// sort. Unrecognized values are passed through; the query engine treats them
// as an ad-count descending fallback rather than rejecting the request.
func ParseSortField(raw string) SortField {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return SortNone
	}
	return SortField(raw)
}

// ParseSortOrder defaults to descending; only an explicit "asc" flips it.
func ParseSortOrder(raw string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(raw), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// Known reports whether the field is one the query engine can sort by.
func (f SortField) Known() bool {
	switch f {
	case SortNone, SortAdCount, SortBrandID, SortCreatedAt, SortBrandName:
		return true
	default:
		return false
	}
}
