package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vietanh2810/inventory-api/internal/api/handler/v1/response"
)

// Counter counts hits of key inside a fixed window and reports how long
// the current window still lasts.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// RateLimit allows limit requests per client IP and window. Counter errors
// let the request through.
func RateLimit(counter Counter, prefix string, limit int, window time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := prefix + ":" + ctx.ClientIP()

		count, ttl, err := counter.Hit(ctx.Request.Context(), key, window)
		if err != nil {
			zap.L().Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			ctx.Next()
			return
		}

		if count > int64(limit) {
			response.RenderErr(ctx, response.ErrTooManyRequests(ttl))
			return
		}

		ctx.Next()
	}
}

type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{
		client: client,
	}
}

func (c *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("c.client.TxPipelined -> %w", err)
	}

	// A key without expiry was just created, or lost its expiry to a failed
	// PExpire on an earlier hit. Both cases start a new window.
	remaining := ttl.Val()
	if remaining <= 0 {
		if err := c.client.PExpire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("c.client.PExpire -> %w", err)
		}
		remaining = window
	}

	return incr.Val(), remaining, nil
}

// MemoryCounter is the single-process fallback used when no redis is
// configured.
type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	count     int64
	windowEnd time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		entries: map[string]*memoryEntry{},
		now:     time.Now,
	}
}

func (c *MemoryCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.purge(now)

	entry, ok := c.entries[key]
	if !ok || now.After(entry.windowEnd) {
		entry = &memoryEntry{windowEnd: now.Add(window)}
		c.entries[key] = entry
	}
	entry.count++

	return entry.count, entry.windowEnd.Sub(now), nil
}

func (c *MemoryCounter) purge(now time.Time) {
	for key, entry := range c.entries {
		if now.After(entry.windowEnd) {
			delete(c.entries, key)
		}
	}
}
