package ports

import (
	"context"
	"time"

	"github.com/Vishwanathanf22labs/queue-dashboard/internal/domain"
)

// PageKey identifies one rendered query shape. It is a structured tuple
// rather than a concatenated string so distinct shapes can never collide on
// formatting.
type PageKey struct {
	Queue     domain.QueueName
	Page      int
	Limit     int
	SortBy    domain.SortField
	SortOrder domain.SortOrder
}

// CachedPage is a previously rendered page body together with its content
// hash. Body is the full serialized response; ETag is derived from the
// deterministic portion only.
type CachedPage struct {
	ETag       string    `json:"etag"`
	Body       []byte    `json:"body"`
	RenderedAt time.Time `json:"rendered_at"`
}

// PageCacheStore persists rendered pages with a TTL. Expired or missing
// entries return (nil, nil); callers fall through to a full render.
type PageCacheStore interface {
	Get(ctx context.Context, key PageKey) (*CachedPage, error)
	Put(ctx context.Context, key PageKey, page CachedPage, ttl time.Duration) error
	Clear(ctx context.Context) error
}
