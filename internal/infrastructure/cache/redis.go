// Package cache holds the Redis-backed job cache and the ranking lock. Redis
// is optional: without it every read misses and every lock is granted.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"swipehire/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var ErrUnavailable = errors.New("redis unavailable")

const (
	PrefixJob         = "job:"
	PrefixRankingLock = "ranking:lock:"
)

const (
	defaultTTL     = 10 * time.Minute
	defaultLockTTL = 30 * time.Second
	scanBatch      = 200
)

func JobKey(id string) string { return PrefixJob + id }

func RankingLockKey(userID string) string { return PrefixRankingLock + userID }

type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger

	// failing is set by the first failed round trip so the outage is
	// logged once instead of per request.
	failing atomic.Bool
}

// NewRedis pings the configured server and falls back to a bypassing cache
// when it does not answer within two seconds.
func NewRedis(cfg config.RedisConfig, logger zerolog.Logger) *Redis {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr(), Password: cfg.Password})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("component", "cache").Str("addr", cfg.Addr()).Msg("redis unavailable, bypassing cache")
		_ = client.Close()
		client = nil
	}
	return NewRedisWithClient(client, cfg.TTL, logger)
}

// NewRedisWithClient wraps client as is. A nil client gives the bypassing
// cache.
func NewRedisWithClient(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{client: client, ttl: ttl, logger: logger.With().Str("component", "cache").Logger()}
}

func (r *Redis) bypassed() bool {
	return r == nil || r.client == nil
}

// failed records err from a round trip and returns it.
func (r *Redis) failed(err error) error {
	if err != nil && r.failing.CompareAndSwap(false, true) {
		r.logger.Warn().Err(err).Msg("redis unavailable, bypassing cache")
	}
	return err
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.bypassed() {
		return ErrUnavailable
	}
	if err := r.client.Ping(ctx).Err(); err != nil {
		return err
	}
	r.failing.Store(false)
	return nil
}

func (r *Redis) Close() error {
	if r.bypassed() {
		return nil
	}
	return r.client.Close()
}

// GetJSON decodes key into out. A missing key, an empty value and a bypassed
// cache are all misses without error.
func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if r.bypassed() {
		return false, nil
	}
	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, r.failed(err)
	case len(raw) == 0:
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores value for ttl, or the cache default when ttl is zero.
func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.bypassed() {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = r.ttl
	}
	return r.failed(r.client.Set(ctx, key, raw, ttl).Err())
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if r.bypassed() {
		return nil
	}
	return r.failed(r.client.Del(ctx, key).Err())
}

// DeleteByPattern unlinks matching keys in SCAN-sized batches so a catalog
// wide invalidation never issues one huge command.
func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	pattern = strings.TrimSpace(pattern)
	if r.bypassed() || pattern == "" {
		return nil
	}

	var (
		removed int64
		pending []string
	)
	unlink := func() error {
		if len(pending) == 0 {
			return nil
		}
		n, err := r.client.Unlink(ctx, pending...).Result()
		if err != nil {
			return r.failed(err)
		}
		removed += n
		pending = pending[:0]
		return nil
	}

	it := r.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for it.Next(ctx) {
		if pending = append(pending, it.Val()); len(pending) >= scanBatch {
			if err := unlink(); err != nil {
				return err
			}
		}
	}
	if err := it.Err(); err != nil {
		return r.failed(err)
	}
	if err := unlink(); err != nil {
		return err
	}
	r.logger.Debug().Str("pattern", pattern).Int64("removed", removed).Msg("cache invalidated")
	return nil
}

// SetIfNotExists takes a best-effort lock. It grants the lock whenever Redis
// cannot answer, returning the error alongside.
func (r *Redis) SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	if r.bypassed() {
		return true, nil
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return true, r.failed(err)
	}
	return ok, nil
}
