package redisqueue

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/Vishwanathanf22labs/queue-dashboard/internal/domain"
	"github.com/Vishwanathanf22labs/queue-dashboard/internal/ports"
)

// Store reads queue state from the Redis backend the scraper workers write
// to. It implements ports.QueueStore and never mutates queue data.
type Store struct {
	client    *redis.Client
	prefix    string
	queueKeys map[domain.QueueName]string
	scanCount int64
}

// NewStore maps logical queue names to their Redis key segments under the
// given prefix (e.g. "bull").
func NewStore(client *redis.Client, prefix string, queueKeys map[domain.QueueName]string, scanCount int64) *Store {
	if scanCount <= 0 {
		scanCount = 100
	}
	return &Store{
		client:    client,
		prefix:    prefix,
		queueKeys: queueKeys,
		scanCount: scanCount,
	}
}

func (s *Store) queueKey(queue domain.QueueName) (string, error) {
	key, ok := s.queueKeys[queue]
	if !ok {
		return "", fmt.Errorf("%w: queue %q has no configured key segment", domain.ErrInvalidInput, queue)
	}
	return key, nil
}

func (s *Store) StateMembers(ctx context.Context, queue domain.QueueName, state domain.JobState) ([]string, error) {
	queueKey, err := s.queueKey(queue)
	if err != nil {
		return nil, err
	}
	members, err := s.client.LRange(ctx, stateListKey(s.prefix, queueKey, string(state)), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: lrange %s/%s: %v", domain.ErrUnavailable, queue, state, err)
	}
	return members, nil
}

func (s *Store) StateLength(ctx context.Context, queue domain.QueueName, state domain.JobState) (int64, error) {
	queueKey, err := s.queueKey(queue)
	if err != nil {
		return 0, err
	}
	n, err := s.client.LLen(ctx, stateListKey(s.prefix, queueKey, string(state))).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: llen %s/%s: %v", domain.ErrUnavailable, queue, state, err)
	}
	return n, nil
}

// ScanJobIDs enumerates the queue's key space with an incremental SCAN so
// a large queue never blocks the store the way a KEYS call would, keeping
// only keys that structurally name a job hash.
func (s *Store) ScanJobIDs(ctx context.Context, queue domain.QueueName) ([]string, error) {
	queueKey, err := s.queueKey(queue)
	if err != nil {
		return nil, err
	}

	var ids []string
	match := queuePrefix(s.prefix, queueKey) + "*"
	var cursor uint64
	for {
		keys, next, scanErr := s.client.Scan(ctx, cursor, match, s.scanCount).Result()
		if scanErr != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", domain.ErrUnavailable, queue, scanErr)
		}
		for _, key := range keys {
			if id, ok := JobIDFromKey(s.prefix, queueKey, key); ok {
				ids = append(ids, id)
			}
		}
		cursor = next
		if cursor == 0 {
			return ids, nil
		}
	}
}

// FetchJobs bulk-fetches job hashes with one pipelined round trip. Ids whose
// hash is missing or unreadable are left out of the result; the caller
// renders placeholders for them.
func (s *Store) FetchJobs(ctx context.Context, queue domain.QueueName, ids []string) (map[string]ports.RawJob, error) {
	queueKey, err := s.queueKey(queue)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return map[string]ports.RawJob{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make(map[string]*redis.MapStringStringCmd, len(ids))
	for _, id := range ids {
		cmds[id] = pipe.HGetAll(ctx, jobKey(s.prefix, queueKey, id))
	}
	if _, execErr := pipe.Exec(ctx); execErr != nil && !errors.Is(execErr, redis.Nil) {
		return nil, fmt.Errorf("%w: hgetall pipeline %s: %v", domain.ErrUnavailable, queue, execErr)
	}

	out := make(map[string]ports.RawJob, len(ids))
	for id, cmd := range cmds {
		fields, cmdErr := cmd.Result()
		if cmdErr != nil || len(fields) == 0 {
			continue
		}
		out[id] = ports.RawJob{
			ID:        id,
			Data:      fields["data"],
			Timestamp: fields["timestamp"],
		}
	}
	return out, nil
}

func (s *Store) TotalCreated(ctx context.Context, queue domain.QueueName) (int64, error) {
	queueKey, err := s.queueKey(queue)
	if err != nil {
		return 0, err
	}
	raw, err := s.client.Get(ctx, idCounterKey(s.prefix, queueKey)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: get id counter %s: %v", domain.ErrUnavailable, queue, err)
	}
	total, convErr := strconv.ParseInt(raw, 10, 64)
	if convErr != nil {
		return 0, nil
	}
	return total, nil
}
