package retention

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RunLock guards against concurrent overlapping retention runs. TryLock
// returns false when another run holds the lock; Unlock releases it.
type RunLock interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

const (
	runLockKey = "memberport:retention:run"
	runLockTTL = 30 * time.Minute
)

// RedisRunLock coordinates runs across instances with SETNX plus a TTL so a
// crashed run cannot wedge the lock forever.
type RedisRunLock struct {
	client *redis.Client
}

func NewRedisRunLock(client *redis.Client) *RedisRunLock {
	return &RedisRunLock{client: client}
}

func (l *RedisRunLock) TryLock(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, runLockKey, time.Now().UTC().Format(time.RFC3339), runLockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("acquire run lock: %w", err)
	}
	return ok, nil
}

func (l *RedisRunLock) Unlock(ctx context.Context) error {
	if err := l.client.Del(ctx, runLockKey).Err(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}

// LocalRunLock is the single-instance fallback when Redis is not configured.
type LocalRunLock struct {
	mu     sync.Mutex
	locked bool
}

func NewLocalRunLock() *LocalRunLock {
	return &LocalRunLock{}
}

func (l *LocalRunLock) TryLock(context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locked {
		return false, nil
	}
	l.locked = true
	return true, nil
}

func (l *LocalRunLock) Unlock(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = false
	return nil
}
