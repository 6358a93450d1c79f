package repository

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/mansoorceksport/circuitbot/internal/domain"
	"github.com/oklog/ulid/v2"
	log "github.com/sirupsen/logrus"
)

// RedisWorkoutLocker implements domain.WorkoutLocker with a SET NX lease per
// user. The lease expires on its own if the holder dies.
type RedisWorkoutLocker struct {
	cache *RedisCacheRepository
	ttl   time.Duration
}

func NewRedisWorkoutLocker(cache *RedisCacheRepository, ttl time.Duration) *RedisWorkoutLocker {
	return &RedisWorkoutLocker{cache: cache, ttl: ttl}
}

func (l *RedisWorkoutLocker) Lock(ctx context.Context, userID string) (func(), error) {
	key := workoutLockKeyPrefix + userID
	token := ulid.MustNew(ulid.Now(), rand.Reader).String()

	ok, err := l.cache.Claim(ctx, key, token, l.ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrWorkoutBusy
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := l.cache.Release(releaseCtx, key, token); err != nil {
			log.Warnf("[Lock] failed to release workout lock for %s: %v", userID, err)
		}
	}, nil
}
