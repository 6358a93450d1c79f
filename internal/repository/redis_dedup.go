package repository

import (
	"context"
	"time"
)

// RedisMessageDeduper remembers webhook message ids so redelivered events
// are handled once.
type RedisMessageDeduper struct {
	cache *RedisCacheRepository
	ttl   time.Duration
}

func NewRedisMessageDeduper(cache *RedisCacheRepository, ttl time.Duration) *RedisMessageDeduper {
	return &RedisMessageDeduper{cache: cache, ttl: ttl}
}

// FirstSeen reports whether mid has not been seen before, recording it.
func (d *RedisMessageDeduper) FirstSeen(ctx context.Context, mid string) (bool, error) {
	if mid == "" {
		return true, nil
	}
	return d.cache.Claim(ctx, webhookMIDKeyPrefix+mid, "1", d.ttl)
}
