package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/Vishwanathanf22labs/queue-dashboard/internal/ports"
)

// PageCache fronts the rendered-page store with conditional-GET semantics.
// Reads that fail are treated as misses; writes are best effort.
type PageCache struct {
	store  ports.PageCacheStore
	logger *slog.Logger
	ttl    time.Duration
}

func NewPageCache(store ports.PageCacheStore, logger *slog.Logger, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &PageCache{store: store, logger: logger, ttl: ttl}
}

// Lookup probes the store for the given shape. A matching client ETag short
// circuits to not-modified without touching the cached body.
func (c *PageCache) Lookup(ctx context.Context, key ports.PageKey, ifNoneMatch string) (*ports.CachedPage, bool) {
	entry, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "page cache read failed; treating as miss",
			"module", "application.pagecache",
			"operation", "cache_get",
			"outcome", "failure",
			"queue", key.Queue,
			"error", err,
		)
		return nil, false
	}
	if entry == nil {
		return nil, false
	}
	return entry, ETagMatches(ifNoneMatch, entry.ETag)
}

// Store persists a rendered page. Failure is logged and swallowed: the
// request that produced the body still succeeds with the uncached result.
func (c *PageCache) Store(ctx context.Context, key ports.PageKey, etag string, body []byte) {
	entry := ports.CachedPage{
		ETag:       etag,
		Body:       body,
		RenderedAt: time.Now().UTC(),
	}
	if err := c.store.Put(ctx, key, entry, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "page cache write failed",
			"module", "application.pagecache",
			"operation", "cache_put",
			"outcome", "failure",
			"queue", key.Queue,
			"body_bytes", len(body),
			"error", err,
		)
	}
}

// Clear drops every cached page.
func (c *PageCache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// ComputeETag derives the deterministic content hash served as the ETag.
// Same bytes in, same tag out.
func ComputeETag(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// ETagMatches reports whether an If-None-Match header matches a server tag.
// It accepts the wildcard form, comma-separated tag lists, and quoted or
// weak-validator tags.
func ETagMatches(header, serverTag string) bool {
	header = strings.TrimSpace(header)
	if header == "" || serverTag == "" {
		return false
	}
	if header == "*" {
		return true
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		candidate = strings.Trim(candidate, `"`)
		if candidate == serverTag {
			return true
		}
	}
	return false
}
