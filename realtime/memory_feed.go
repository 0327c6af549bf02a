package realtime

import (
	"context"
	"errors"
	"slices"
	"sync"
)

var ErrFeedClosed = errors.New("realtime feed closed")

// MemoryFeed delivers events inside one process. Publish calls matching
// handlers synchronously, in subscription order.
type MemoryFeed struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]memorySub
	closed bool
}

type memorySub struct {
	scope   Scope
	handler Handler
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: map[uint64]memorySub{}}
}

func (f *MemoryFeed) Publish(_ context.Context, ev Event) error {
	f.mu.RLock()
	if f.closed {
		f.mu.RUnlock()
		return ErrFeedClosed
	}
	ids := make([]uint64, 0, len(f.subs))
	for id := range f.subs {
		ids = append(ids, id)
	}
	matched := make([]Handler, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		if sub := f.subs[id]; sub.scope.Matches(ev) {
			matched = append(matched, sub.handler)
		}
	}
	f.mu.RUnlock()

	// handlers may subscribe or unsubscribe, so they run unlocked
	for _, h := range matched {
		h(ev)
	}
	return nil
}

func (f *MemoryFeed) Subscribe(_ context.Context, scope Scope, h Handler) (*Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrFeedClosed
	}
	f.nextID++
	id := f.nextID
	f.subs[id] = memorySub{scope: scope, handler: h}
	return newSubscription(scope, func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}), nil
}

// Active reports the number of open subscriptions.
func (f *MemoryFeed) Active() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

func (f *MemoryFeed) Close() error {
	f.mu.Lock()
	f.closed = true
	f.subs = map[uint64]memorySub{}
	f.mu.Unlock()
	return nil
}
