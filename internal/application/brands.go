package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Vishwanathanf22labs/queue-dashboard/internal/domain"
	"github.com/Vishwanathanf22labs/queue-dashboard/internal/ports"
)

// BrandCache is the in-memory brand catalog view. A full rebuild replaces
// the map wholesale; supplementary fetches for ids indexed since the last
// rebuild merge additively so warm entries survive the slow path.
type BrandCache struct {
	repo   ports.BrandRepository
	index  *JobIndex
	logger *slog.Logger
	maxAge time.Duration
	nowFn  func() time.Time

	mu      sync.RWMutex
	byID    map[int64]domain.Brand
	builtAt time.Time
}

func NewBrandCache(repo ports.BrandRepository, index *JobIndex, logger *slog.Logger, maxAge time.Duration) *BrandCache {
	if maxAge <= 0 {
		maxAge = 10 * time.Minute
	}
	return &BrandCache{
		repo:   repo,
		index:  index,
		logger: logger,
		maxAge: maxAge,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// Resolve maps brand ids to catalog records. It never fails the caller:
// lookup errors are logged and the affected ids are simply absent from the
// result, rendering as "Unknown" downstream.
func (c *BrandCache) Resolve(ctx context.Context, ids []int64) map[int64]domain.Brand {
	if c.stale() {
		c.Rebuild(ctx)
	}

	out := make(map[int64]domain.Brand, len(ids))
	var missing []int64

	c.mu.RLock()
	for _, id := range ids {
		if brand, ok := c.byID[id]; ok {
			out[id] = brand
		} else {
			missing = append(missing, id)
		}
	}
	c.mu.RUnlock()

	if len(missing) == 0 {
		return out
	}

	// Referenced after the last rebuild; one small bulk fetch, merged in.
	found, err := c.repo.FindByIDs(ctx, missing)
	if err != nil {
		c.logger.WarnContext(ctx, "supplementary brand lookup failed",
			"module", "application.brands",
			"operation", "resolve_missing",
			"outcome", "failure",
			"missing_count", len(missing),
			"error", err,
		)
		return out
	}

	c.mu.Lock()
	for _, brand := range found {
		if c.byID == nil {
			c.byID = make(map[int64]domain.Brand)
		}
		c.byID[brand.ID] = brand
		out[brand.ID] = brand
	}
	c.mu.Unlock()
	return out
}

// Rebuild replaces the cache with one bulk fetch covering every brand id
// referenced by the current index snapshots. Failure keeps the old cache.
func (c *BrandCache) Rebuild(ctx context.Context) {
	ids := c.referencedIDs()
	fresh := make(map[int64]domain.Brand, len(ids))

	if len(ids) > 0 {
		brands, err := c.repo.FindByIDs(ctx, ids)
		if err != nil {
			c.logger.ErrorContext(ctx, "brand cache rebuild failed; keeping previous cache",
				"module", "application.brands",
				"operation", "rebuild_cache",
				"outcome", "failure",
				"id_count", len(ids),
				"error", err,
			)
			return
		}
		for _, brand := range brands {
			fresh[brand.ID] = brand
		}
	}

	c.mu.Lock()
	c.byID = fresh
	c.builtAt = c.nowFn()
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "brand cache rebuilt",
		"module", "application.brands",
		"operation", "rebuild_cache",
		"outcome", "success",
		"brand_count", len(fresh),
	)
}

// Drop empties the cache so the next resolve triggers a full rebuild.
func (c *BrandCache) Drop() {
	c.mu.Lock()
	c.byID = nil
	c.builtAt = time.Time{}
	c.mu.Unlock()
}

func (c *BrandCache) stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byID == nil || c.nowFn().Sub(c.builtAt) >= c.maxAge
}

// referencedIDs unions brand ids across all published queue snapshots.
func (c *BrandCache) referencedIDs() []int64 {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, snap := range c.index.Snapshots() {
		for _, id := range snap.BrandIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
