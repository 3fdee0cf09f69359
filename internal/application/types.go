package application

import (
	"time"

	"github.com/Vishwanathanf22labs/queue-dashboard/internal/domain"
)

type Config struct {
	IndexMaxAge      time.Duration
	BrandCacheMaxAge time.Duration
	PageCacheTTL     time.Duration
	FetchBatchSize   int
	StoreTimeout     time.Duration
	DefaultPageLimit int
	MaxPageLimit     int
	HotPages         int
	HotPageLimit     int
}

// PageRequest is one paginated queue view request after routing-layer
// validation. IfNoneMatch carries the client's conditional-GET token.
type PageRequest struct {
	Queue       domain.QueueName
	Page        int
	Limit       int
	SortBy      domain.SortField
	SortOrder   domain.SortOrder
	IfNoneMatch string
}

// BrandView is one row of the rendered dashboard page: a job record joined
// with brand catalog metadata.
type BrandView struct {
	JobID     string     `json:"job_id"`
	BrandID   *int64     `json:"brand_id"`
	BrandName string     `json:"brand_name"`
	PageID    string     `json:"page_id"`
	Category  string     `json:"category"`
	AdCount   int        `json:"ad_count"`
	State     string     `json:"state"`
	QueuedAt  *time.Time `json:"queued_at,omitempty"`
}

type Pagination struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
}

// QueueCounters are the per-state job tallies exposed as pre-computed
// analytics. Derived from the index snapshot when one exists, from the
// store's list lengths otherwise.
type QueueCounters struct {
	Waiting      int   `json:"waiting"`
	Active       int   `json:"active"`
	Delayed      int   `json:"delayed"`
	Completed    int   `json:"completed"`
	Failed       int   `json:"failed"`
	Prioritized  int   `json:"prioritized"`
	Unknown      int   `json:"unknown"`
	TotalCreated int64 `json:"total_created"`
}

type Analytics struct {
	CurrentPageTotalAds int             `json:"current_page_total_ads"`
	ProcessingTimeMS    int64           `json:"processing_time_ms"`
	Counters            QueueCounters   `json:"pre_computed_counters"`
	Performance         MetricsSnapshot `json:"performance_metrics"`
}

// QueuePage is the full rendered response for one query shape.
type QueuePage struct {
	Brands     []BrandView `json:"brands"`
	Pagination Pagination  `json:"pagination"`
	QueueType  string      `json:"queue_type"`
	Analytics  Analytics   `json:"analytics"`
	ETag       string      `json:"etag"`
}

// pageEnvelope is the deterministic portion of a QueuePage hashed into the
// ETag. Volatile analytics (processing time, performance metrics) stay out so
// rendering the same logical page twice yields the same tag.
type pageEnvelope struct {
	Brands     []BrandView   `json:"brands"`
	Pagination Pagination    `json:"pagination"`
	QueueType  string        `json:"queue_type"`
	Counters   QueueCounters `json:"pre_computed_counters"`
}

// PageResult is the outcome of a queue view request. When NotModified is set
// the body is empty and the handler answers 304 with the ETag only.
type PageResult struct {
	NotModified bool
	CacheHit    bool
	ETag        string
	Body        []byte
}

// QueueStats is the lightweight per-queue health view.
type QueueStats struct {
	QueueType string        `json:"queue_type"`
	Counters  QueueCounters `json:"pre_computed_counters"`
	IndexedAt *time.Time    `json:"indexed_at,omitempty"`
}
