package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Vishwanathanf22labs/queue-dashboard/internal/domain"
)

func TestBrandResolveRebuildsFromIndexedIDs(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	now := time.Now().UTC()

	f.store.addJob(domain.QueueRegular, "1", domain.StateActive, payloadRaw("1", 42, 4, "", now))
	f.store.addJob(domain.QueueWatchlist, "2", domain.StateWaiting, payloadRaw("2", 77, 1, "", now))
	f.repo.add(domain.Brand{ID: 42, DisplayName: "Acme"})
	f.repo.add(domain.Brand{ID: 77, DisplayName: "Globex"})

	f.service.RebuildIndexes(ctx)

	resolved := f.service.brands.Resolve(ctx, []int64{42, 77})
	if len(resolved) != 2 {
		t.Fatalf("expected both brands resolved, got %d", len(resolved))
	}
	if resolved[42].DisplayName != "Acme" || resolved[77].DisplayName != "Globex" {
		t.Fatalf("wrong brands: %+v", resolved)
	}

	// The cold cache should have rebuilt once, covering ids from every
	// queue snapshot in a single bulk fetch.
	f.repo.mu.Lock()
	lookups := len(f.repo.lookups)
	first := append([]int64(nil), f.repo.lookups[0]...)
	f.repo.mu.Unlock()
	if lookups != 1 {
		t.Fatalf("expected one bulk lookup, got %d", lookups)
	}
	if len(first) != 2 {
		t.Fatalf("rebuild should fetch the union of indexed ids, got %v", first)
	}
}

func TestBrandResolveSupplementsMissingIDs(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	now := time.Now().UTC()

	f.store.addJob(domain.QueueRegular, "1", domain.StateActive, payloadRaw("1", 42, 4, "", now))
	f.repo.add(domain.Brand{ID: 42, DisplayName: "Acme"})
	f.service.RebuildIndexes(ctx)

	if got := f.service.brands.Resolve(ctx, []int64{42}); got[42].DisplayName != "Acme" {
		t.Fatalf("warm-up resolve failed: %+v", got)
	}

	// Brand 55 shows up in the queue after the rebuild. Resolve should
	// fetch just that id and merge it without discarding brand 42.
	f.repo.add(domain.Brand{ID: 55, DisplayName: "Initech"})
	resolved := f.service.brands.Resolve(ctx, []int64{42, 55})
	if resolved[42].DisplayName != "Acme" || resolved[55].DisplayName != "Initech" {
		t.Fatalf("supplementary merge broke the cache: %+v", resolved)
	}

	f.repo.mu.Lock()
	last := append([]int64(nil), f.repo.lookups[len(f.repo.lookups)-1]...)
	f.repo.mu.Unlock()
	if len(last) != 1 || last[0] != 55 {
		t.Fatalf("supplementary fetch should cover only the missing id, got %v", last)
	}

	// Once merged, further resolves stay in memory.
	before := len(f.repo.lookups)
	f.service.brands.Resolve(ctx, []int64{42, 55})
	if len(f.repo.lookups) != before {
		t.Fatalf("resolved ids should not trigger another lookup")
	}
}

func TestBrandResolveToleratesRepositoryFailure(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	f.repo.findErr = errors.New("connection refused")

	resolved := f.service.brands.Resolve(ctx, []int64{42})
	if len(resolved) != 0 {
		t.Fatalf("failed lookups should yield an empty map, got %+v", resolved)
	}
}

func TestBrandRebuildFailureKeepsPreviousCache(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	now := time.Now().UTC()

	f.store.addJob(domain.QueueRegular, "1", domain.StateActive, payloadRaw("1", 42, 4, "", now))
	f.repo.add(domain.Brand{ID: 42, DisplayName: "Acme"})
	f.service.RebuildIndexes(ctx)
	f.service.RebuildBrandCache(ctx)

	f.repo.findErr = errors.New("connection refused")
	f.service.RebuildBrandCache(ctx)

	resolved := f.service.brands.Resolve(ctx, []int64{42})
	if resolved[42].DisplayName != "Acme" {
		t.Fatalf("failed rebuild must keep the previous entries, got %+v", resolved)
	}
}

func TestBrandCacheExpiryTriggersRebuild(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	now := time.Now().UTC()

	f.store.addJob(domain.QueueRegular, "1", domain.StateActive, payloadRaw("1", 42, 4, "", now))
	f.repo.add(domain.Brand{ID: 42, DisplayName: "Acme"})
	f.service.RebuildIndexes(ctx)

	clock := now
	f.service.brands.nowFn = func() time.Time { return clock }

	f.service.brands.Resolve(ctx, []int64{42})
	before := len(f.repo.lookups)

	clock = clock.Add(2 * time.Minute)
	f.service.brands.Resolve(ctx, []int64{42})
	if len(f.repo.lookups) <= before {
		t.Fatalf("an aged-out cache should rebuild on the next resolve")
	}
}
