// Package lock даёт эксклюзивную блокировку генерации слотов на одного врача,
// чтобы пересекающиеся запуски не создавали один и тот же день дважды.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired блокировка уже занята другим владельцем
var ErrNotAcquired = errors.New("lock: not acquired")

// Release снимает ранее взятую блокировку
type Release func(ctx context.Context) error

// Locker берёт именованную блокировку на ttl
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
}

// Удаляем ключ только если он всё ещё наш
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker блокировка через SET NX PX
type RedisLocker struct {
	client *redis.Client
	prefix string
}

func NewRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	if client == nil {
		panic("lock: redis client required")
	}
	return &RedisLocker{client: client, prefix: prefix}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lock: acquire %s: %w", fullKey, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil {
			return fmt.Errorf("lock: release %s: %w", fullKey, err)
		}
		return nil
	}, nil
}

// NopLocker всегда выдаёт блокировку. Используется без Redis.
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, string, time.Duration) (Release, error) {
	return func(context.Context) error { return nil }, nil
}

// DoctorKey ключ блокировки генерации для врача
func DoctorKey(doctorID int64) string {
	return fmt.Sprintf("generate:doctor:%d", doctorID)
}
