package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Vishwanathanf22labs/queue-dashboard/internal/domain"
	"github.com/Vishwanathanf22labs/queue-dashboard/internal/ports"
)

// fakeQueueStore is an in-memory ports.QueueStore with injectable failures.
type fakeQueueStore struct {
	mu        sync.Mutex
	states    map[domain.QueueName]map[domain.JobState][]string
	jobs      map[domain.QueueName]map[string]ports.RawJob
	scanOrder map[domain.QueueName][]string
	totals    map[domain.QueueName]int64

	stateErr error
	scanErr  error
	fetchErr error

	scanCalls  int
	fetchCalls int
}

func newFakeQueueStore() *fakeQueueStore {
	return &fakeQueueStore{
		states:    make(map[domain.QueueName]map[domain.JobState][]string),
		jobs:      make(map[domain.QueueName]map[string]ports.RawJob),
		scanOrder: make(map[domain.QueueName][]string),
		totals:    make(map[domain.QueueName]int64),
	}
}

func (f *fakeQueueStore) addJob(queue domain.QueueName, id string, state domain.JobState, raw *ports.RawJob) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if state != "" {
		if f.states[queue] == nil {
			f.states[queue] = make(map[domain.JobState][]string)
		}
		f.states[queue][state] = append(f.states[queue][state], id)
	}
	if raw != nil {
		if f.jobs[queue] == nil {
			f.jobs[queue] = make(map[string]ports.RawJob)
		}
		f.jobs[queue][id] = *raw
	}
	f.scanOrder[queue] = append(f.scanOrder[queue], id)
	f.totals[queue]++
}

func (f *fakeQueueStore) StateMembers(_ context.Context, queue domain.QueueName, state domain.JobState) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stateErr != nil {
		return nil, f.stateErr
	}
	return append([]string(nil), f.states[queue][state]...), nil
}

func (f *fakeQueueStore) StateLength(_ context.Context, queue domain.QueueName, state domain.JobState) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stateErr != nil {
		return 0, f.stateErr
	}
	return int64(len(f.states[queue][state])), nil
}

func (f *fakeQueueStore) ScanJobIDs(_ context.Context, queue domain.QueueName) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scanCalls++
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	return append([]string(nil), f.scanOrder[queue]...), nil
}

func (f *fakeQueueStore) FetchJobs(_ context.Context, queue domain.QueueName, ids []string) (map[string]ports.RawJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make(map[string]ports.RawJob, len(ids))
	for _, id := range ids {
		if raw, ok := f.jobs[queue][id]; ok {
			out[id] = raw
		}
	}
	return out, nil
}

func (f *fakeQueueStore) TotalCreated(_ context.Context, queue domain.QueueName) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totals[queue], nil
}

// fakeBrandRepo is an in-memory ports.BrandRepository recording lookups.
type fakeBrandRepo struct {
	mu      sync.Mutex
	brands  map[int64]domain.Brand
	findErr error
	lookups [][]int64
}

func newFakeBrandRepo() *fakeBrandRepo {
	return &fakeBrandRepo{brands: make(map[int64]domain.Brand)}
}

func (f *fakeBrandRepo) add(brand domain.Brand) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.brands[brand.ID] = brand
}

func (f *fakeBrandRepo) FindByIDs(_ context.Context, ids []int64) ([]domain.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, append([]int64(nil), ids...))
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []domain.Brand
	for _, id := range ids {
		if brand, ok := f.brands[id]; ok {
			out = append(out, brand)
		}
	}
	return out, nil
}

// fakePageStore is an in-memory ports.PageCacheStore. TTLs are ignored;
// expiry behavior belongs to the real store.
type fakePageStore struct {
	mu      sync.Mutex
	entries map[ports.PageKey]ports.CachedPage
	getErr  error
	putErr  error
	puts    int
}

func newFakePageStore() *fakePageStore {
	return &fakePageStore{entries: make(map[ports.PageKey]ports.CachedPage)}
}

func (f *fakePageStore) Get(_ context.Context, key ports.PageKey) (*ports.CachedPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	entry, ok := f.entries[key]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (f *fakePageStore) Put(_ context.Context, key ports.PageKey, page ports.CachedPage, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	f.entries[key] = page
	return nil
}

func (f *fakePageStore) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make(map[ports.PageKey]ports.CachedPage)
	return nil
}

func (f *fakePageStore) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type fixture struct {
	service *Service
	store   *fakeQueueStore
	repo    *fakeBrandRepo
	pages   *fakePageStore
}

func newFixture() *fixture {
	store := newFakeQueueStore()
	repo := newFakeBrandRepo()
	pages := newFakePageStore()
	service := NewService(Dependencies{
		Config: Config{
			IndexMaxAge:      time.Minute,
			BrandCacheMaxAge: time.Minute,
			PageCacheTTL:     time.Minute,
			DefaultPageLimit: 10,
			MaxPageLimit:     100,
		},
		Store:     store,
		Brands:    repo,
		PageStore: pages,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &fixture{service: service, store: store, repo: repo, pages: pages}
}

func payloadRaw(id string, brandID int64, totalAds int, category string, ts time.Time) *ports.RawJob {
	return &ports.RawJob{
		ID:        id,
		Data:      fmt.Sprintf(`{"brand_id":%d,"total_ads":%d,"category":%q}`, brandID, totalAds, category),
		Timestamp: fmt.Sprintf("%d", ts.UnixMilli()),
	}
}
