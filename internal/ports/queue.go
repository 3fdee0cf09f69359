package ports

import (
	"context"

	"github.com/Vishwanathanf22labs/queue-dashboard/internal/domain"
)

// RawJob is one job hash as stored by the queue backend, before any parsing.
// Data holds the serialized payload; Timestamp is the raw creation-time field
// (epoch milliseconds as written by the producer).
type RawJob struct {
	ID        string
	Data      string
	Timestamp string
}

// QueueStore observes the external queue backend. It is strictly read-side:
// the dashboard never enqueues, claims, or mutates jobs.
//
// Implementations must keep calls bounded: ScanJobIDs uses a cursor-based
// scan rather than a single unbounded listing, and FetchJobs performs one
// round trip for the whole batch.
type QueueStore interface {
	// StateMembers returns the job ids in one lifecycle-state list.
	StateMembers(ctx context.Context, queue domain.QueueName, state domain.JobState) ([]string, error)

	// StateLength returns the length of one lifecycle-state list without
	// materializing its members.
	StateLength(ctx context.Context, queue domain.QueueName, state domain.JobState) (int64, error)

	// ScanJobIDs enumerates the bare job ids stored under the queue's key
	// space, filtering out state lists, locks, and other auxiliary keys.
	ScanJobIDs(ctx context.Context, queue domain.QueueName) ([]string, error)

	// FetchJobs bulk-fetches job hashes for the given ids. Ids with no
	// stored record are simply absent from the result.
	FetchJobs(ctx context.Context, queue domain.QueueName, ids []string) (map[string]RawJob, error)

	// TotalCreated returns the queue's monotonically increasing id counter,
	// i.e. the number of jobs ever created.
	TotalCreated(ctx context.Context, queue domain.QueueName) (int64, error)
}
