package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/albin6/cellsphere/pkg/instance"
)

const defaultLockTTL = 5 * time.Minute

// Lock gives one worker exclusive use of a job key across instances.
type Lock interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	ReleaseIfOwner(ctx context.Context, key, token string) (bool, error)
}

// RedisLock implements Lock with SETNX plus a TTL. Each key remembers the
// owner token it set so a lock that expired and was taken over is never
// released by the old holder.
type RedisLock struct {
	client redisStore
	prefix string
	ttl    time.Duration

	mu     sync.Mutex
	owners map[string]string
}

func NewRedisLock(client redisStore, prefix string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if prefix == "" {
		return nil, errors.New("lock prefix is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{client: client, prefix: prefix, ttl: ttl, owners: map[string]string{}}, nil
}

func (l *RedisLock) redisKey(key string) string {
	return l.prefix + ":" + key
}

func (l *RedisLock) Acquire(ctx context.Context, key string) (bool, error) {
	token := instance.GetID() + ":" + uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.redisKey(key), token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", key, err)
	}
	if ok {
		l.mu.Lock()
		l.owners[key] = token
		l.mu.Unlock()
	}
	return ok, nil
}

func (l *RedisLock) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	token, held := l.owners[key]
	delete(l.owners, key)
	l.mu.Unlock()
	if !held {
		return nil
	}

	if _, err := l.client.ReleaseIfOwner(ctx, l.redisKey(key), token); err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}
