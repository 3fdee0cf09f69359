package application

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/Vishwanathanf22labs/queue-dashboard/internal/domain"
	"github.com/Vishwanathanf22labs/queue-dashboard/internal/ports"
)

func TestRebuildClassifiesAndCollectsBrands(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	f.store.addJob(domain.QueueRegular, "1", domain.StateActive, payloadRaw("1", 42, 12, "apparel", now))
	f.store.addJob(domain.QueueRegular, "2", domain.StateWaiting, payloadRaw("2", 99, 3, "food", now.Add(time.Minute)))
	f.store.addJob(domain.QueueRegular, "3", "", payloadRaw("3", 42, 7, "apparel", now.Add(2*time.Minute)))

	snap := f.service.index.Rebuild(ctx, domain.QueueRegular)
	if len(snap.Jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(snap.Jobs))
	}
	if snap.Jobs[0].State != domain.StateActive || snap.Jobs[1].State != domain.StateWaiting {
		t.Fatalf("unexpected states: %v %v", snap.Jobs[0].State, snap.Jobs[1].State)
	}
	if snap.Jobs[2].State != domain.StateUnknown {
		t.Fatalf("job outside membership lists should be unknown, got %v", snap.Jobs[2].State)
	}
	if !reflect.DeepEqual(snap.BrandIDs, []int64{42, 99}) {
		t.Fatalf("expected deduplicated brand ids [42 99], got %v", snap.BrandIDs)
	}
	if snap.Jobs[0].CreatedAt != now {
		t.Fatalf("timestamp not parsed: %v", snap.Jobs[0].CreatedAt)
	}
}

func TestRebuildIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	f.store.addJob(domain.QueueRegular, "1", domain.StateActive, payloadRaw("1", 42, 12, "apparel", now))
	f.store.addJob(domain.QueueRegular, "2", domain.StateFailed, payloadRaw("2", 99, 3, "food", now))

	clock := now
	f.service.index.nowFn = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	first := f.service.index.Rebuild(ctx, domain.QueueRegular)
	second := f.service.index.Rebuild(ctx, domain.QueueRegular)

	if !reflect.DeepEqual(first.Jobs, second.Jobs) {
		t.Fatalf("rebuild with unchanged store should yield identical jobs")
	}
	if !reflect.DeepEqual(first.BrandIDs, second.BrandIDs) {
		t.Fatalf("rebuild with unchanged store should yield identical brand ids")
	}
	if !second.BuiltAt.After(first.BuiltAt) {
		t.Fatalf("BuiltAt should advance between rebuilds")
	}
}

func TestRebuildDeduplicatesScannedIDs(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	now := time.Now().UTC()

	f.store.addJob(domain.QueueRegular, "7", domain.StateWaiting, payloadRaw("7", 5, 1, "", now))
	// Same id surfaces twice in the scan; first occurrence wins.
	f.store.mu.Lock()
	f.store.scanOrder[domain.QueueRegular] = append(f.store.scanOrder[domain.QueueRegular], "7")
	f.store.mu.Unlock()

	snap := f.service.index.Rebuild(ctx, domain.QueueRegular)
	if len(snap.Jobs) != 1 {
		t.Fatalf("expected 1 job after dedup, got %d", len(snap.Jobs))
	}
}

func TestRebuildDefensiveParsing(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	f.store.addJob(domain.QueueRegular, "m1", domain.StateWaiting, nil) // hash missing entirely
	f.store.addJob(domain.QueueRegular, "m2", domain.StateActive, &ports.RawJob{
		ID: "m2", Data: "{not json", Timestamp: fmtMillis(now),
	})
	f.store.addJob(domain.QueueRegular, "m3", domain.StateActive, &ports.RawJob{
		ID: "m3", Data: `{"total_ads":9}`, Timestamp: fmtMillis(now),
	})

	snap := f.service.index.Rebuild(ctx, domain.QueueRegular)
	if len(snap.Jobs) != 3 {
		t.Fatalf("defensive parsing must keep all records, got %d", len(snap.Jobs))
	}
	for _, job := range snap.Jobs {
		if job.BrandID != nil {
			t.Fatalf("job %s should have nil brand id", job.ID)
		}
	}
	if snap.Jobs[2].AdCount != 0 {
		t.Fatalf("payload without brand id should be dropped, got ad count %d", snap.Jobs[2].AdCount)
	}
	if snap.Jobs[1].CreatedAt.IsZero() || snap.Jobs[2].CreatedAt.IsZero() {
		t.Fatalf("timestamp should survive payload problems")
	}
	if len(snap.BrandIDs) != 0 {
		t.Fatalf("no brand ids expected, got %v", snap.BrandIDs)
	}
}

func TestRebuildSurvivesStateListFailure(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	f.store.addJob(domain.QueueRegular, "1", domain.StateActive, payloadRaw("1", 42, 2, "", time.Now().UTC()))
	f.store.stateErr = errors.New("redis down")

	snap := f.service.index.Rebuild(ctx, domain.QueueRegular)
	if len(snap.Jobs) != 1 {
		t.Fatalf("jobs should still be indexed, got %d", len(snap.Jobs))
	}
	if snap.Jobs[0].State != domain.StateUnknown {
		t.Fatalf("state should degrade to unknown, got %v", snap.Jobs[0].State)
	}
}

func TestRebuildScanFailurePublishesEmptySnapshot(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	f.store.addJob(domain.QueueRegular, "1", domain.StateActive, payloadRaw("1", 42, 2, "", time.Now().UTC()))
	f.store.scanErr = errors.New("redis down")

	snap := f.service.index.Rebuild(ctx, domain.QueueRegular)
	if len(snap.Jobs) != 0 {
		t.Fatalf("scan failure should publish empty snapshot, got %d jobs", len(snap.Jobs))
	}
	if snap.BuiltAt.IsZero() {
		t.Fatalf("empty snapshot must still be stamped so callers do not retry forever")
	}
	if f.service.index.Snapshot(domain.QueueRegular) != snap {
		t.Fatalf("empty snapshot should be published")
	}
}

func TestRebuildFetchFailureEmitsPlaceholders(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	f.store.addJob(domain.QueueRegular, "1", domain.StateWaiting, payloadRaw("1", 42, 2, "", time.Now().UTC()))
	f.store.addJob(domain.QueueRegular, "2", domain.StateFailed, payloadRaw("2", 43, 4, "", time.Now().UTC()))
	f.store.fetchErr = errors.New("timeout")

	snap := f.service.index.Rebuild(ctx, domain.QueueRegular)
	if len(snap.Jobs) != 2 {
		t.Fatalf("fetch failure should still keep the queue visible, got %d jobs", len(snap.Jobs))
	}
	for _, job := range snap.Jobs {
		if job.BrandID != nil {
			t.Fatalf("placeholders expected after fetch failure")
		}
	}
	if snap.Jobs[0].State != domain.StateWaiting || snap.Jobs[1].State != domain.StateFailed {
		t.Fatalf("state resolution should survive fetch failure")
	}
}

func TestCurrentRebuildsOnlyWhenStale(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	f.store.addJob(domain.QueueRegular, "1", domain.StateActive, payloadRaw("1", 42, 2, "", time.Now().UTC()))

	first := f.service.index.Current(ctx, domain.QueueRegular)
	second := f.service.index.Current(ctx, domain.QueueRegular)
	if first != second {
		t.Fatalf("fresh snapshot should be reused")
	}
	if f.store.scanCalls != 1 {
		t.Fatalf("expected a single scan, got %d", f.store.scanCalls)
	}

	f.service.index.nowFn = func() time.Time { return time.Now().UTC().Add(time.Hour) }
	third := f.service.index.Current(ctx, domain.QueueRegular)
	if third == first {
		t.Fatalf("stale snapshot should be rebuilt")
	}
}

func fmtMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
