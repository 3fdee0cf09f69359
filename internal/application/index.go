package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Vishwanathanf22labs/queue-dashboard/internal/domain"
	"github.com/Vishwanathanf22labs/queue-dashboard/internal/ports"
)

// JobIndex owns the per-queue snapshots of the external job queue. Rebuilds
// happen outside any lock readers contend on; the finished snapshot is
// published with an atomic swap so readers see either the old view or the
// new one in full, never a mix.
type JobIndex struct {
	store     ports.QueueStore
	logger    *slog.Logger
	maxAge    time.Duration
	batchSize int
	opTimeout time.Duration
	nowFn     func() time.Time

	mu        sync.RWMutex
	snapshots map[domain.QueueName]*domain.QueueSnapshot
}

func NewJobIndex(store ports.QueueStore, logger *slog.Logger, maxAge time.Duration, batchSize int, opTimeout time.Duration) *JobIndex {
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	if opTimeout <= 0 {
		opTimeout = 5 * time.Second
	}
	return &JobIndex{
		store:     store,
		logger:    logger,
		maxAge:    maxAge,
		batchSize: batchSize,
		opTimeout: opTimeout,
		nowFn:     func() time.Time { return time.Now().UTC() },
		snapshots: make(map[domain.QueueName]*domain.QueueSnapshot),
	}
}

// Snapshot returns the currently published snapshot without triggering a
// rebuild. Nil when the queue has never been indexed.
func (x *JobIndex) Snapshot(queue domain.QueueName) *domain.QueueSnapshot {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.snapshots[queue]
}

// Snapshots returns every published snapshot, keyed by queue.
func (x *JobIndex) Snapshots() map[domain.QueueName]*domain.QueueSnapshot {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make(map[domain.QueueName]*domain.QueueSnapshot, len(x.snapshots))
	for name, snap := range x.snapshots {
		out[name] = snap
	}
	return out
}

// Current returns a snapshot fit for serving, rebuilding first when the
// published one is missing or older than the configured max age.
func (x *JobIndex) Current(ctx context.Context, queue domain.QueueName) *domain.QueueSnapshot {
	if snap := x.Snapshot(queue); snap != nil && x.nowFn().Sub(snap.BuiltAt) < x.maxAge {
		return snap
	}
	return x.Rebuild(ctx, queue)
}

// Drop discards all published snapshots. Used by explicit cache clears.
func (x *JobIndex) Drop() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.snapshots = make(map[domain.QueueName]*domain.QueueSnapshot)
}

// Rebuild scans the queue backend and publishes a fresh snapshot. It never
// returns an error: a failure that prevents enumeration publishes an empty
// snapshot stamped now, so callers do not retry in a tight loop.
func (x *JobIndex) Rebuild(ctx context.Context, queue domain.QueueName) *domain.QueueSnapshot {
	started := x.nowFn()
	states := x.fetchStateMap(ctx, queue)

	scanCtx, cancel := context.WithTimeout(ctx, x.opTimeout)
	ids, err := x.store.ScanJobIDs(scanCtx, queue)
	cancel()
	if err != nil {
		x.logger.ErrorContext(ctx, "job key scan failed; publishing empty snapshot",
			"module", "application.index",
			"operation", "rebuild_index",
			"outcome", "failure",
			"queue", queue,
			"error", err,
		)
		return x.publish(&domain.QueueSnapshot{Queue: queue, BuiltAt: x.nowFn()})
	}

	snap := &domain.QueueSnapshot{Queue: queue}
	seen := make(map[string]struct{}, len(ids))
	brandSeen := make(map[int64]struct{})

	for start := 0; start < len(ids); start += x.batchSize {
		end := start + x.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		fetchCtx, cancel := context.WithTimeout(ctx, x.opTimeout)
		raws, fetchErr := x.store.FetchJobs(fetchCtx, queue, batch)
		cancel()
		if fetchErr != nil {
			// One bad batch degrades to placeholders; the rest of the
			// queue stays visible.
			x.logger.WarnContext(ctx, "job batch fetch failed; emitting placeholders",
				"module", "application.index",
				"operation", "fetch_job_batch",
				"outcome", "failure",
				"queue", queue,
				"batch_size", len(batch),
				"error", fetchErr,
			)
			raws = nil
		}

		for _, id := range batch {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			rec := buildJobRecord(id, raws[id], states)
			snap.Jobs = append(snap.Jobs, rec)
			if rec.BrandID != nil {
				if _, known := brandSeen[*rec.BrandID]; !known {
					brandSeen[*rec.BrandID] = struct{}{}
					snap.BrandIDs = append(snap.BrandIDs, *rec.BrandID)
				}
			}
		}
	}

	snap.BuiltAt = x.nowFn()
	x.logger.InfoContext(ctx, "job index rebuilt",
		"module", "application.index",
		"operation", "rebuild_index",
		"outcome", "success",
		"queue", queue,
		"job_count", len(snap.Jobs),
		"brand_count", len(snap.BrandIDs),
		"duration_ms", x.nowFn().Sub(started).Milliseconds(),
	)
	return x.publish(snap)
}

// fetchStateMap builds the id-to-state map from the five membership lists.
// A failed list fetch degrades to empty membership for that state only.
func (x *JobIndex) fetchStateMap(ctx context.Context, queue domain.QueueName) map[string]domain.JobState {
	states := make(map[string]domain.JobState)
	for _, state := range domain.ListedStates {
		listCtx, cancel := context.WithTimeout(ctx, x.opTimeout)
		members, err := x.store.StateMembers(listCtx, queue, state)
		cancel()
		if err != nil {
			x.logger.WarnContext(ctx, "state list fetch failed; treating as empty",
				"module", "application.index",
				"operation", "fetch_state_list",
				"outcome", "failure",
				"queue", queue,
				"state", state,
				"error", err,
			)
			continue
		}
		for _, id := range members {
			// First list wins on the rare id present in two lists.
			if _, ok := states[id]; !ok {
				states[id] = state
			}
		}
	}
	return states
}

func (x *JobIndex) publish(snap *domain.QueueSnapshot) *domain.QueueSnapshot {
	x.mu.Lock()
	x.snapshots[snap.Queue] = snap
	x.mu.Unlock()
	return snap
}

// jobPayload mirrors the serialized "data" field written by the scraper
// producers. Unknown fields are ignored.
type jobPayload struct {
	BrandID  *int64 `json:"brand_id"`
	TotalAds int    `json:"total_ads"`
	Category string `json:"category"`
}

// buildJobRecord normalizes one fetched hash into a JobRecord, degrading to
// a placeholder on missing data, a malformed payload, or a payload with no
// brand reference. State defaults to unknown outside any membership list.
func buildJobRecord(id string, raw ports.RawJob, states map[string]domain.JobState) domain.JobRecord {
	rec := domain.JobRecord{ID: id, State: domain.StateUnknown}
	if state, ok := states[id]; ok {
		rec.State = state
	}
	if raw.ID == "" {
		return rec
	}

	rec.CreatedAt = parseEpochMillis(raw.Timestamp)

	data := strings.TrimSpace(raw.Data)
	if data == "" {
		return rec
	}
	var payload jobPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return rec
	}
	if payload.BrandID == nil {
		return rec
	}

	rec.BrandID = payload.BrandID
	rec.AdCount = payload.TotalAds
	rec.Category = payload.Category
	return rec
}

func parseEpochMillis(raw string) time.Time {
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
