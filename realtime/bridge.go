package realtime

import (
	"context"

	"github.com/kasilami/kasilami/cache"
	"github.com/kasilami/kasilami/models"
	"github.com/kasilami/kasilami/utils"
)

// Notify is told which cached read went stale and why.
type Notify func(key cache.Key, ev Event)

// Bridge turns change-feed inserts into query-cache invalidations. It never
// merges the new row into cached data; readers refetch instead.
type Bridge struct {
	feed Feed
	inv  cache.Invalidator
}

func NewBridge(feed Feed, inv cache.Invalidator) *Bridge {
	return &Bridge{feed: feed, inv: inv}
}

// WatchPosts observes new posts in one kasi/section. Empty kasi or section
// widen the scope to all. The kasi filter runs in the feed, the section
// filter on receipt.
func (b *Bridge) WatchPosts(ctx context.Context, kasi, section string, notify Notify) (*Subscription, error) {
	// same normalization reads apply before keying the cache
	kasi = models.FormatKasiName(models.CleanKasiName(kasi))
	scope := Scope{Table: "posts", Label: section}
	if kasi != "" {
		scope.Column, scope.Value = "kasi", kasi
	}
	if scope.Label == "" {
		scope.Label = "all"
	}
	key := cache.PostsKey(kasi, section)

	return b.feed.Subscribe(ctx, scope, func(ev Event) {
		if section != "" && ev.Columns["section"] != section {
			return
		}
		b.invalidate(key, ev, notify)
		// other lists (all sections, all kasis) include this post too
		b.invalidate(cache.AllPostsKey(), ev, nil)
	})
}

// WatchComments observes new comments on one post.
func (b *Bridge) WatchComments(ctx context.Context, postID string, notify Notify) (*Subscription, error) {
	scope := Scope{Table: "comments", Column: "post_id", Value: postID}
	key := cache.CommentsKey(postID)

	return b.feed.Subscribe(ctx, scope, func(ev Event) {
		b.invalidate(key, ev, notify)
		// comment counts live on the post lists and the post detail
		b.invalidate(cache.AllPostsKey(), ev, nil)
		b.invalidate(cache.PostKey(postID), ev, nil)
	})
}

// WatchAll keeps a process-local cache coherent with inserts made by other
// instances. The returned group must be released on shutdown.
func (b *Bridge) WatchAll(ctx context.Context) (*Group, error) {
	g := &Group{}

	kasis, err := b.feed.Subscribe(ctx, Scope{Table: "kasis"}, func(ev Event) {
		b.invalidate(cache.KasisKey(), ev, nil)
		b.invalidate(cache.Key{cache.KindKasi}, ev, nil)
	})
	if err != nil {
		return nil, err
	}
	g.Add(kasis)

	posts, err := b.feed.Subscribe(ctx, Scope{Table: "posts"}, func(ev Event) {
		b.invalidate(cache.AllPostsKey(), ev, nil)
	})
	if err != nil {
		g.Unsubscribe()
		return nil, err
	}
	g.Add(posts)

	comments, err := b.feed.Subscribe(ctx, Scope{Table: "comments"}, func(ev Event) {
		postID := ev.Columns["post_id"]
		b.invalidate(cache.CommentsKey(postID), ev, nil)
		b.invalidate(cache.PostKey(postID), ev, nil)
		b.invalidate(cache.AllPostsKey(), ev, nil)
	})
	if err != nil {
		g.Unsubscribe()
		return nil, err
	}
	g.Add(comments)
	return g, nil
}

func (b *Bridge) invalidate(key cache.Key, ev Event, notify Notify) {
	// feed deliveries outlive the request that opened the watch
	if err := b.inv.Invalidate(context.Background(), key); err != nil {
		utils.Sugar.Warnf("realtime: invalidate %s after %s insert: %v", key.String(), ev.Table, err)
	}
	if notify != nil {
		notify(key, ev)
	}
}
