package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kasilami/kasilami/utils"
)

const redisChannelPrefix = "realtime:"

// RedisFeed fans events out across service instances with Redis pub/sub.
// Every table maps to one channel; scope filtering happens on receipt.
type RedisFeed struct {
	rc *redis.Client

	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

func NewRedisFeed(rc *redis.Client) *RedisFeed {
	return &RedisFeed{rc: rc, subs: map[*Subscription]struct{}{}}
}

func channelFor(table string) string {
	return redisChannelPrefix + table
}

func (f *RedisFeed) Publish(ctx context.Context, ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return f.rc.Publish(ctx, channelFor(ev.Table), b).Err()
}

// Subscribe returns once Redis has confirmed the subscription, so events
// published after it returns are delivered.
func (f *RedisFeed) Subscribe(ctx context.Context, scope Scope, h Handler) (*Subscription, error) {
	ps := f.rc.Subscribe(ctx, channelFor(scope.Table))
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", scope.Name(), err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range ps.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				utils.Sugar.Warnf("realtime: bad payload on %s: %v", msg.Channel, err)
				continue
			}
			if scope.Matches(ev) {
				h(ev)
			}
		}
	}()

	var sub *Subscription
	sub = newSubscription(scope, func() {
		f.mu.Lock()
		delete(f.subs, sub)
		f.mu.Unlock()
		if err := ps.Close(); err != nil {
			utils.Sugar.Warnf("realtime: close %s: %v", scope.Name(), err)
		}
		<-done
	})

	f.mu.Lock()
	f.subs[sub] = struct{}{}
	f.mu.Unlock()
	return sub, nil
}

// Close releases every subscription still open. The Redis client is owned
// by the caller and stays open.
func (f *RedisFeed) Close() error {
	f.mu.Lock()
	subs := make([]*Subscription, 0, len(f.subs))
	for sub := range f.subs {
		subs = append(subs, sub)
	}
	f.mu.Unlock()
	for _, sub := range subs {
		sub.Unsubscribe()
	}
	return nil
}
