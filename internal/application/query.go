package application

import (
	"sort"
	"strings"
	"time"

	"github.com/Vishwanathanf22labs/queue-dashboard/internal/domain"
)

// buildViews deduplicates snapshot jobs by id (first occurrence wins) and
// joins each against the brand map. Unresolved brand references keep the
// record and render placeholder display fields.
func buildViews(snap *domain.QueueSnapshot, brands map[int64]domain.Brand) []BrandView {
	if snap == nil || len(snap.Jobs) == 0 {
		return nil
	}

	views := make([]BrandView, 0, len(snap.Jobs))
	seen := make(map[string]struct{}, len(snap.Jobs))
	for _, job := range snap.Jobs {
		if _, dup := seen[job.ID]; dup {
			continue
		}
		seen[job.ID] = struct{}{}

		view := BrandView{
			JobID:     job.ID,
			BrandID:   job.BrandID,
			BrandName: domain.UnknownBrandLabel,
			PageID:    domain.UnknownBrandLabel,
			Category:  domain.UnknownBrandLabel,
			AdCount:   job.AdCount,
			State:     string(job.State),
		}
		if !job.CreatedAt.IsZero() {
			queuedAt := job.CreatedAt
			view.QueuedAt = &queuedAt
		}
		if job.BrandID != nil {
			if brand, ok := brands[*job.BrandID]; ok {
				view.BrandName = brand.DisplayName
				view.PageID = brand.PageID
				if brand.Category != "" {
					view.Category = brand.Category
				}
			}
		}
		if view.Category == domain.UnknownBrandLabel && job.Category != "" {
			view.Category = job.Category
		}
		views = append(views, view)
	}
	return views
}

// sortViews orders views by the requested field and direction. The sort is
// stable, so ties keep discovery order. SortNone preserves discovery order
// outright; an unrecognized field falls back to ad count descending.
func sortViews(views []BrandView, field domain.SortField, order domain.SortOrder) {
	if field == domain.SortNone {
		return
	}
	if !field.Known() {
		field = domain.SortAdCount
		order = domain.SortDesc
	}

	less := func(a, b BrandView) bool {
		switch field {
		case domain.SortBrandID:
			return brandIDOrZero(a) < brandIDOrZero(b)
		case domain.SortCreatedAt:
			return queuedAtOrZero(a).Before(queuedAtOrZero(b))
		case domain.SortBrandName:
			return strings.ToLower(a.BrandName) < strings.ToLower(b.BrandName)
		default:
			return a.AdCount < b.AdCount
		}
	}

	sort.SliceStable(views, func(i, j int) bool {
		if order == domain.SortAsc {
			return less(views[i], views[j])
		}
		return less(views[j], views[i])
	})
}

// paginate clamps the request window and slices the view list. Pages past
// the end yield an empty slice with correct totals.
func paginate(views []BrandView, page, limit, defaultLimit, maxLimit int) ([]BrandView, Pagination) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	total := len(views)
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	meta := Pagination{
		CurrentPage: page,
		PerPage:     limit,
		TotalItems:  total,
		TotalPages:  totalPages,
	}

	start := (page - 1) * limit
	if start >= total {
		return []BrandView{}, meta
	}
	end := start + limit
	if end > total {
		end = total
	}
	return views[start:end], meta
}

func brandIDOrZero(v BrandView) int64 {
	if v.BrandID == nil {
		return 0
	}
	return *v.BrandID
}

func queuedAtOrZero(v BrandView) time.Time {
	if v.QueuedAt == nil {
		return time.Time{}
	}
	return *v.QueuedAt
}
