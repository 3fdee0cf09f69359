package application

import "sync"

// Monitor is the process-wide rolling request aggregate. It is purely
// observational: nothing in the caching pipeline consults it.
type Monitor struct {
	mu             sync.Mutex
	requests       int64
	totalLatencyMS int64
	hits           int64
	misses         int64
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

// MetricsSnapshot is a point-in-time copy of the monitor's counters.
type MetricsSnapshot struct {
	RequestCount    int64   `json:"request_count"`
	TotalLatencyMS  int64   `json:"total_latency_ms"`
	AvgLatencyMS    float64 `json:"avg_latency_ms"`
	CacheHits       int64   `json:"cache_hits"`
	CacheMisses     int64   `json:"cache_misses"`
	CacheHitRatio   float64 `json:"cache_hit_ratio"`
}

// Record tallies one completed request with its cache outcome.
func (m *Monitor) Record(latencyMS int64, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	m.totalLatencyMS += latencyMS
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *Monitor) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := MetricsSnapshot{
		RequestCount:   m.requests,
		TotalLatencyMS: m.totalLatencyMS,
		CacheHits:      m.hits,
		CacheMisses:    m.misses,
	}
	if m.requests > 0 {
		snap.AvgLatencyMS = float64(m.totalLatencyMS) / float64(m.requests)
	}
	if lookups := m.hits + m.misses; lookups > 0 {
		snap.CacheHitRatio = float64(m.hits) / float64(lookups)
	}
	return snap
}

func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = 0
	m.totalLatencyMS = 0
	m.hits = 0
	m.misses = 0
}
