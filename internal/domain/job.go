package domain

import "time"

// JobState is a job's position in its processing lifecycle as observed from
// the queue backend's per-state membership lists.
type JobState string

const (
	StateWaiting     JobState = "waiting"
	StateActive      JobState = "active"
	StateDelayed     JobState = "delayed"
	StateCompleted   JobState = "completed"
	StateFailed      JobState = "failed"
	StatePrioritized JobState = "prioritized"
	// StateUnknown marks jobs whose id appears in no membership list.
	StateUnknown JobState = "unknown"
)

// ListedStates are the states backed by a membership list in the queue store.
// Prioritized and unknown have no list of their own.
var ListedStates = []JobState{
	StateWaiting,
	StateActive,
	StateDelayed,
	StateCompleted,
	StateFailed,
}

// JobRecord is one processing unit observed from the queue backend.
// BrandID is nil when the stored payload was missing, malformed, or carried
// no brand reference; the record itself is always kept.
type JobRecord struct {
	ID        string
	BrandID   *int64
	AdCount   int
	Category  string
	CreatedAt time.Time
	State     JobState
}

// QueueSnapshot is an immutable point-in-time view of one queue.
// It is replaced wholesale on rebuild and never mutated in place, so readers
// holding a pointer always see a consistent view.
type QueueSnapshot struct {
	Queue    QueueName
	Jobs     []JobRecord
	BrandIDs []int64
	BuiltAt  time.Time
}

// StateCounts tallies jobs per lifecycle state from the snapshot itself.
// This is the canonical counter source; list lengths in the store are only a
// fallback for an empty snapshot.
func (s *QueueSnapshot) StateCounts() map[JobState]int {
	counts := make(map[JobState]int, len(ListedStates)+2)
	if s == nil {
		return counts
	}
	for _, job := range s.Jobs {
		counts[job.State]++
	}
	return counts
}
