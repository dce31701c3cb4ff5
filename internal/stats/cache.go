// Package stats maintains the per-user highest-ranked-count aggregate and the
// leaderboard cache built on top of it.
package stats

import (
	"context"
	"time"
)

// LeaderboardCacheKey is the single cache entry holding the default user
// listing. Mutations that change an aggregate drop this key after commit.
const LeaderboardCacheKey = "users:list:default"

// Cache is the small key-value surface the tracker needs. Get reports a miss
// with ok=false rather than an error so callers fall through to the store.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
