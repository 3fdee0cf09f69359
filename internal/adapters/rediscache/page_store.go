package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Vishwanathanf22labs/queue-dashboard/internal/domain"
	"github.com/Vishwanathanf22labs/queue-dashboard/internal/ports"
)

const keyPrefix = "dashboard:pagecache:"

// PageStore persists rendered dashboard pages in Redis with a TTL. Expiry is
// passive: Redis drops the key, the next Get misses.
type PageStore struct {
	client *redis.Client
}

func NewPageStore(client *redis.Client) *PageStore {
	return &PageStore{client: client}
}

// redisKey flattens the structured page key into a collision-free string;
// every tuple element gets its own delimited slot.
func redisKey(key ports.PageKey) string {
	return fmt.Sprintf("%s%s:p%d:l%d:%s:%s", keyPrefix, key.Queue, key.Page, key.Limit, key.SortBy, key.SortOrder)
}

func (s *PageStore) Get(ctx context.Context, key ports.PageKey) (*ports.CachedPage, error) {
	raw, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: page cache get: %v", domain.ErrUnavailable, err)
	}
	var page ports.CachedPage
	if unmarshalErr := json.Unmarshal(raw, &page); unmarshalErr != nil {
		// A corrupt entry is indistinguishable from a miss for callers.
		return nil, nil
	}
	return &page, nil
}

func (s *PageStore) Put(ctx context.Context, key ports.PageKey, page ports.CachedPage, ttl time.Duration) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("marshal cached page: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("%w: page cache set: %v", domain.ErrUnavailable, err)
	}
	return nil
}

// Clear removes every cached page using an incremental scan over the cache
// key space.
func (s *PageStore) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("%w: page cache scan: %v", domain.ErrUnavailable, err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("%w: page cache del: %v", domain.ErrUnavailable, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
