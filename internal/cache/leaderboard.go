// Package cache holds a Redis read-through cache for leaderboard pages.
//
// Pages are keyed by a per-scope generation counter. Any write to a scope
// bumps the counter, so stale pages are never read again and simply expire.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/tierlist/pkg/logger"
)

// LeaderboardCache is safe to use with a nil client; every lookup misses.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

func NewLeaderboardCache(client *redis.Client, ttl time.Duration) *LeaderboardCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &LeaderboardCache{client: client, ttl: ttl}
}

func (c *LeaderboardCache) Enabled() bool { return c != nil && c.client != nil }

func scopeKey(scope string) string {
	if scope == "" {
		return "global"
	}
	return scope
}

func genKey(scope string) string { return "leaderboard:gen:" + scopeKey(scope) }

func (c *LeaderboardCache) pageKey(ctx context.Context, scope, page string) (string, error) {
	gen, err := c.client.Get(ctx, genKey(scope)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("leaderboard:%s:%d:%s", scopeKey(scope), gen, page), nil
}

// Get decodes a cached page into dst and reports whether it was found. The
// returned key is pinned to the generation seen here; pass it to Set on a
// miss so a page built before a concurrent Invalidate is stored where no
// later reader looks. An empty key means the cache is unusable.
func (c *LeaderboardCache) Get(ctx context.Context, scope, page string, dst interface{}) (string, bool) {
	if !c.Enabled() {
		return "", false
	}
	key, err := c.pageKey(ctx, scope, page)
	if err != nil {
		logger.Warn("leaderboard cache unavailable", zap.Error(err))
		return "", false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		c.misses.Add(1)
		return key, false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.misses.Add(1)
		return key, false
	}
	c.hits.Add(1)
	return key, true
}

// Set stores v under a key returned by Get.
func (c *LeaderboardCache) Set(ctx context.Context, key string, v interface{}) {
	if !c.Enabled() || key == "" {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		logger.Warn("leaderboard cache set failed", zap.Error(err))
	}
}

// Invalidate makes every cached page of scope unreachable.
func (c *LeaderboardCache) Invalidate(ctx context.Context, scope string) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Incr(ctx, genKey(scope)).Err(); err != nil {
		logger.Warn("leaderboard cache invalidate failed", zap.String("scope", scope), zap.Error(err))
	}
}

// Stats returns hit and miss counters since start.
func (c *LeaderboardCache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}
