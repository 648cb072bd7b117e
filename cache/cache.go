// Package cache is a named Redis read cache for the hot read paths. Keys are
// named after what they hold (the tool list, one tool's detail, one tool's
// request list, one tool's active checkout) and every successful write
// invalidates exactly the names it affects, the same way the original client
// invalidated its query cache.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Freshness window for cached reads.
const DefaultTTL = 5 * time.Minute

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Key builders. Same vocabulary across controllers so invalidation can name
// the reads a write affects.
func ToolListKey() string              { return "cache:tools" }
func ToolKey(id string) string         { return "cache:tool:" + id }
func ToolRequestsKey(id string) string { return "cache:tool_requests:" + id }
func CheckoutKey(id string) string     { return "cache:active_checkout:" + id }

// Get unmarshals the cached value into dst. The bool reports a hit; cache
// errors are swallowed, a broken cache must read like a miss.
func (s *Store) Get(ctx context.Context, key string, dst interface{}) bool {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

func (s *Store) Set(ctx context.Context, key string, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = s.rdb.Set(ctx, key, b, s.ttl).Err()
}

// Invalidate drops the named entries. Callers pass the exact set of reads
// their write affected.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	_ = s.rdb.Del(ctx, keys...).Err()
}

// InvalidateTool drops everything derived from one tool plus the shared list.
func (s *Store) InvalidateTool(ctx context.Context, toolID string) {
	s.Invalidate(ctx,
		ToolListKey(),
		ToolKey(toolID),
		ToolRequestsKey(toolID),
		CheckoutKey(toolID),
	)
}
