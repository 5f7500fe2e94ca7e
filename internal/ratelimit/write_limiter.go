package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/chopchop-market/chopchop/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyWritePerUser = "write:user:%d"

// WriteLimiter throttles mutating marketplace endpoints per principal.
// It is a no-op when rate limiting is disabled or redis is absent.
type WriteLimiter struct {
	enabled bool

	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewWriteLimiter(cfg config.Config, client *redis.Client) *WriteLimiter {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled || client == nil {
		return nil
	}
	if limitCfg.WriteRate <= 0 || limitCfg.WriteBurst <= 0 {
		return nil
	}
	return &WriteLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    limitCfg.WriteRate,
		burst:   limitCfg.WriteBurst,
	}
}

func (l *WriteLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *WriteLimiter) Allow(ctx context.Context, userID snowflake.ID) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyWritePerUser, userID.Int64()), l.rate, l.burst)
}

// NewRedisClient returns nil when no address is configured; consumers
// treat a nil client as "no redis".
func NewRedisClient(cfg config.Config) *redis.Client {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})
}
