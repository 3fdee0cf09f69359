package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Vishwanathanf22labs/queue-dashboard/internal/domain"
	"github.com/Vishwanathanf22labs/queue-dashboard/internal/ports"
)

// Service is the queue dashboard's read-side pipeline: response cache probe,
// index lookup, brand join, render, cache write-back. It owns the shared
// caches; request handlers and the background refresher both drive it.
type Service struct {
	cfg       Config
	store     ports.QueueStore
	index     *JobIndex
	brands    *BrandCache
	pageCache *PageCache
	monitor   *Monitor
	logger    *slog.Logger
	nowFn     func() time.Time
}

type Dependencies struct {
	Config    Config
	Store     ports.QueueStore
	Brands    ports.BrandRepository
	PageStore ports.PageCacheStore
	Logger    *slog.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config
	if cfg.FetchBatchSize <= 0 {
		cfg.FetchBatchSize = 50
	}
	if cfg.DefaultPageLimit <= 0 {
		cfg.DefaultPageLimit = 10
	}
	if cfg.MaxPageLimit <= 0 {
		cfg.MaxPageLimit = 100
	}
	if cfg.HotPages <= 0 {
		cfg.HotPages = 2
	}
	if cfg.HotPageLimit <= 0 {
		cfg.HotPageLimit = cfg.DefaultPageLimit
	}

	index := NewJobIndex(deps.Store, logger, cfg.IndexMaxAge, cfg.FetchBatchSize, cfg.StoreTimeout)
	return &Service{
		cfg:       cfg,
		store:     deps.Store,
		index:     index,
		brands:    NewBrandCache(deps.Brands, index, logger, cfg.BrandCacheMaxAge),
		pageCache: NewPageCache(deps.PageStore, logger, cfg.PageCacheTTL),
		monitor:   NewMonitor(),
		logger:    logger,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
}

// QueuePage serves one paginated queue view, cheapest path first: cached body
// (or 304), then a full render with cache write-back.
func (s *Service) QueuePage(ctx context.Context, req PageRequest) (PageResult, error) {
	started := s.nowFn()
	req = s.clampRequest(req)
	key := ports.PageKey{
		Queue:     req.Queue,
		Page:      req.Page,
		Limit:     req.Limit,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}

	if entry, matched := s.pageCache.Lookup(ctx, key, req.IfNoneMatch); entry != nil {
		s.monitor.Record(s.nowFn().Sub(started).Milliseconds(), true)
		if matched {
			return PageResult{NotModified: true, CacheHit: true, ETag: entry.ETag}, nil
		}
		return PageResult{CacheHit: true, ETag: entry.ETag, Body: entry.Body}, nil
	}

	page, err := s.renderPage(ctx, key)
	if err != nil {
		return PageResult{}, err
	}
	page.Analytics.ProcessingTimeMS = s.nowFn().Sub(started).Milliseconds()
	page.Analytics.Performance = s.monitor.Snapshot()

	body, err := json.Marshal(page)
	if err != nil {
		return PageResult{}, fmt.Errorf("marshal queue page: %w", err)
	}
	s.pageCache.Store(ctx, key, page.ETag, body)
	s.monitor.Record(s.nowFn().Sub(started).Milliseconds(), false)

	if ETagMatches(req.IfNoneMatch, page.ETag) {
		return PageResult{NotModified: true, ETag: page.ETag}, nil
	}
	return PageResult{ETag: page.ETag, Body: body}, nil
}

// WarmShape renders one query shape through the full pipeline and writes it
// into the response cache, regardless of what the cache currently holds.
func (s *Service) WarmShape(ctx context.Context, req PageRequest) error {
	req = s.clampRequest(req)
	key := ports.PageKey{
		Queue:     req.Queue,
		Page:      req.Page,
		Limit:     req.Limit,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	page, err := s.renderPage(ctx, key)
	if err != nil {
		return err
	}
	body, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("marshal queue page: %w", err)
	}
	s.pageCache.Store(ctx, key, page.ETag, body)
	return nil
}

// renderPage is the uncached pipeline: snapshot, brand join, sort, paginate,
// aggregate, hash.
func (s *Service) renderPage(ctx context.Context, key ports.PageKey) (*QueuePage, error) {
	snap := s.index.Current(ctx, key.Queue)
	brandMap := s.brands.Resolve(ctx, snap.BrandIDs)

	views := buildViews(snap, brandMap)
	sortViews(views, key.SortBy, key.SortOrder)
	pageViews, pagination := paginate(views, key.Page, key.Limit, s.cfg.DefaultPageLimit, s.cfg.MaxPageLimit)

	counters := s.counters(ctx, key.Queue, snap)

	envelope := pageEnvelope{
		Brands:     pageViews,
		Pagination: pagination,
		QueueType:  string(key.Queue),
		Counters:   counters,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal page envelope: %w", err)
	}
	etag := ComputeETag(raw)

	totalAds := 0
	for _, view := range pageViews {
		totalAds += view.AdCount
	}

	return &QueuePage{
		Brands:     pageViews,
		Pagination: pagination,
		QueueType:  string(key.Queue),
		Analytics: Analytics{
			CurrentPageTotalAds: totalAds,
			Counters:            counters,
		},
		ETag: etag,
	}, nil
}

// counters derives per-state tallies from the snapshot, falling back to the
// store's list lengths only when the snapshot holds no jobs. TotalCreated is
// always best-effort from the store's id counter.
func (s *Service) counters(ctx context.Context, queue domain.QueueName, snap *domain.QueueSnapshot) QueueCounters {
	var counters QueueCounters

	if snap != nil && len(snap.Jobs) > 0 {
		byState := snap.StateCounts()
		counters.Waiting = byState[domain.StateWaiting]
		counters.Active = byState[domain.StateActive]
		counters.Delayed = byState[domain.StateDelayed]
		counters.Completed = byState[domain.StateCompleted]
		counters.Failed = byState[domain.StateFailed]
		counters.Prioritized = byState[domain.StatePrioritized]
		counters.Unknown = byState[domain.StateUnknown]
	} else {
		for _, state := range domain.ListedStates {
			n, err := s.store.StateLength(ctx, queue, state)
			if err != nil {
				continue
			}
			switch state {
			case domain.StateWaiting:
				counters.Waiting = int(n)
			case domain.StateActive:
				counters.Active = int(n)
			case domain.StateDelayed:
				counters.Delayed = int(n)
			case domain.StateCompleted:
				counters.Completed = int(n)
			case domain.StateFailed:
				counters.Failed = int(n)
			}
		}
	}

	if total, err := s.store.TotalCreated(ctx, queue); err == nil {
		counters.TotalCreated = total
	}
	return counters
}

// Stats serves the lightweight per-queue counter view without rendering.
func (s *Service) Stats(ctx context.Context, queue domain.QueueName) QueueStats {
	snap := s.index.Current(ctx, queue)
	stats := QueueStats{
		QueueType: string(queue),
		Counters:  s.counters(ctx, queue, snap),
	}
	if snap != nil && !snap.BuiltAt.IsZero() {
		builtAt := snap.BuiltAt
		stats.IndexedAt = &builtAt
	}
	return stats
}

// ClearCaches drops the response cache, index snapshots, and brand cache.
// The response-cache flush error is surfaced; in-memory drops cannot fail.
func (s *Service) ClearCaches(ctx context.Context) error {
	err := s.pageCache.Clear(ctx)
	s.index.Drop()
	s.brands.Drop()
	if err != nil {
		return fmt.Errorf("clear page cache: %w", err)
	}
	return nil
}

// Metrics exposes the performance monitor snapshot.
func (s *Service) Metrics() MetricsSnapshot {
	return s.monitor.Snapshot()
}

// ResetMetrics zeroes the performance monitor.
func (s *Service) ResetMetrics() {
	s.monitor.Reset()
}

// RebuildIndexes rebuilds every queue snapshot; used by the refresher.
func (s *Service) RebuildIndexes(ctx context.Context) {
	for _, queue := range domain.QueueNames {
		s.index.Rebuild(ctx, queue)
	}
}

// RebuildBrandCache fully rebuilds the brand catalog cache.
func (s *Service) RebuildBrandCache(ctx context.Context) {
	s.brands.Rebuild(ctx)
}

// HotShapes enumerates the query shapes kept warm by the refresher: the
// first pages of each queue at the default limit, unsorted.
func (s *Service) HotShapes() []PageRequest {
	shapes := make([]PageRequest, 0, len(domain.QueueNames)*s.cfg.HotPages)
	for _, queue := range domain.QueueNames {
		for page := 1; page <= s.cfg.HotPages; page++ {
			shapes = append(shapes, PageRequest{
				Queue:     queue,
				Page:      page,
				Limit:     s.cfg.HotPageLimit,
				SortBy:    domain.SortNone,
				SortOrder: domain.SortDesc,
			})
		}
	}
	return shapes
}

func (s *Service) clampRequest(req PageRequest) PageRequest {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = s.cfg.DefaultPageLimit
	}
	if req.Limit > s.cfg.MaxPageLimit {
		req.Limit = s.cfg.MaxPageLimit
	}
	if req.SortBy == "" {
		req.SortBy = domain.SortNone
	}
	// Unrecognized fields collapse to the ad-count fallback here, before the
	// cache key is built, so arbitrary sort_by input cannot mint new keys.
	if !req.SortBy.Known() {
		req.SortBy = domain.SortAdCount
		req.SortOrder = domain.SortDesc
	}
	if req.SortOrder == "" {
		req.SortOrder = domain.SortDesc
	}
	return req
}
