package application

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Refresher keeps the job index, brand cache, and hot response-cache shapes
// warm ahead of expiry. One instance runs per process; an in-flight flag
// keeps a slow cycle from overlapping with the next tick.
type Refresher struct {
	logger   *slog.Logger
	service  *Service
	interval time.Duration
	inFlight atomic.Bool
}

func NewRefresher(logger *slog.Logger, service *Service, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Refresher{
		logger:   logger,
		service:  service,
		interval: interval,
	}
}

// Run executes refresh cycles until context cancellation. The first cycle
// starts immediately so the dashboards are warm shortly after boot.
func (w *Refresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.refreshOnce(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Refresher) refreshOnce(ctx context.Context) {
	if !w.inFlight.CompareAndSwap(false, true) {
		w.logger.WarnContext(ctx, "refresh cycle still in flight; skipping tick",
			"module", "application.refresher",
			"operation", "refresh_once",
			"outcome", "skipped",
		)
		return
	}
	defer w.inFlight.Store(false)

	started := time.Now()
	w.service.RebuildIndexes(ctx)
	w.service.RebuildBrandCache(ctx)

	warmed := 0
	failed := 0
	for _, shape := range w.service.HotShapes() {
		// Shapes are isolated: one failed render never blocks the rest.
		if err := w.service.WarmShape(ctx, shape); err != nil {
			failed++
			w.logger.WarnContext(ctx, "hot shape render failed",
				"module", "application.refresher",
				"operation", "warm_shape",
				"outcome", "failure",
				"queue", shape.Queue,
				"page", shape.Page,
				"limit", shape.Limit,
				"error", err,
			)
			continue
		}
		warmed++
	}

	w.logger.InfoContext(ctx, "refresh cycle completed",
		"module", "application.refresher",
		"operation", "refresh_once",
		"outcome", "success",
		"warmed_count", warmed,
		"failed_count", failed,
		"duration_ms", time.Since(started).Milliseconds(),
	)
}
