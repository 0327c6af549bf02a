package cache

import (
	"context"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore is a process-local Store backed by ttlcache.
type MemoryStore struct {
	items *ttlcache.Cache[string, []byte]
}

// NewMemoryStore starts a MemoryStore. Call Close to stop its expiry loop.
func NewMemoryStore() *MemoryStore {
	items := ttlcache.New[string, []byte](
		// reads must not extend the lifetime of an entry
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go items.Start()
	return &MemoryStore{items: items}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	item := m.items.Get(key)
	if item == nil || item.IsExpired() {
		return nil, false
	}
	return item.Value(), true
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	m.items.Set(key, value, ttl)
}

func (m *MemoryStore) DeletePrefix(_ context.Context, key string) error {
	m.items.Delete(key)
	prefix := key + ":"
	for _, k := range m.items.Keys() {
		if strings.HasPrefix(k, prefix) {
			m.items.Delete(k)
		}
	}
	return nil
}

// Len reports the number of live entries.
func (m *MemoryStore) Len() int {
	return m.items.Len()
}

// Close stops the expiry loop.
func (m *MemoryStore) Close() {
	m.items.Stop()
}
