package cache

import (
	"context"
	"time"
)

// Store keeps encoded query results.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// DeletePrefix removes key itself and every key starting with key+":".
	DeletePrefix(ctx context.Context, key string) error
}

// Invalidator marks cached reads as stale so the next read refetches.
type Invalidator interface {
	Invalidate(ctx context.Context, key Key) error
}
