package realtime

import (
	"context"
	"sync"
)

// Feed publishes change events and delivers them to scoped subscribers.
type Feed interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context, scope Scope, h Handler) (*Subscription, error)
	Close() error
}

// Subscription is the handle of one open channel. The owner must call
// Unsubscribe when it stops observing the scope.
type Subscription struct {
	scope Scope
	once  sync.Once
	stop  func()
}

func newSubscription(scope Scope, stop func()) *Subscription {
	return &Subscription{scope: scope, stop: stop}
}

// Scope returns the scope the subscription was opened for.
func (s *Subscription) Scope() Scope {
	return s.scope
}

// Unsubscribe releases the channel. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.stop)
}

// Group owns several subscriptions that share a lifetime.
type Group struct {
	mu   sync.Mutex
	subs []*Subscription
}

func (g *Group) Add(sub *Subscription) {
	g.mu.Lock()
	g.subs = append(g.subs, sub)
	g.mu.Unlock()
}

// Unsubscribe releases every subscription in the group.
func (g *Group) Unsubscribe() {
	g.mu.Lock()
	subs := g.subs
	g.subs = nil
	g.mu.Unlock()
	for _, sub := range subs {
		sub.Unsubscribe()
	}
}
