package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kasilami/kasilami/utils"
)

// RedisStore shares cached reads between service instances.
type RedisStore struct {
	rc *redis.Client
}

func NewRedisStore(rc *redis.Client) *RedisStore {
	return &RedisStore{rc: rc}
}

// Get returns cached bytes for a key. Errors count as a miss.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	b, err := r.rc.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			utils.Sugar.Warnf("cache get failed key=%s err=%v", key, err)
		}
		return nil, false
	}
	return b, true
}

// Set stores bytes with the given TTL.
func (r *RedisStore) Set(ctx context.Context, key string, b []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.rc.Set(ctx, key, b, ttl).Err(); err != nil {
		utils.Sugar.Warnf("cache set failed key=%s err=%v", key, err)
	}
}

// DeletePrefix deletes the key and every key below it using SCAN.
func (r *RedisStore) DeletePrefix(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := r.rc.Del(ctx, key).Err(); err != nil {
		return err
	}
	var cursor uint64
	for {
		keys, cur, err := r.rc.Scan(ctx, cursor, key+":*", 1000).Result()
		if err != nil {
			return err
		}
		cursor = cur
		if len(keys) > 0 {
			pipe := r.rc.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			if _, err := pipe.Exec(ctx); err != nil {
				return err
			}
		}
		if cursor == 0 {
			return nil
		}
	}
}
