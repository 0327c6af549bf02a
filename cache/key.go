// Package cache is the query cache that sits in front of the store.
//
// Reads are keyed by a tuple of entity kind and filter values. Keys form a
// hierarchy: invalidating ("posts") drops every ("posts", kasi, section)
// entry, invalidating ("posts", "Soweto", "events") drops only that list.
package cache

import (
	"net/url"
	"strings"
)

const keyPrefix = "cache:"

// Key identifies one cached read.
type Key []string

// Entity kinds.
const (
	KindKasis    = "kasis"
	KindKasi     = "kasi"
	KindPosts    = "posts"
	KindPost     = "post"
	KindComments = "comments"
)

// KasisKey is the key of the kasi list.
func KasisKey() Key { return Key{KindKasis} }

// KasiKey is the key of a single kasi lookup.
func KasiKey(name string) Key { return Key{KindKasi, name} }

// PostsKey is the key of a post list. Empty kasi or section mean "all".
// Callers pass the kasi through models.FormatKasiName first.
func PostsKey(kasi, section string) Key { return Key{KindPosts, kasi, section} }

// AllPostsKey covers every post list.
func AllPostsKey() Key { return Key{KindPosts} }

// PostKey is the key of a single post with its comment count.
func PostKey(id string) Key { return Key{KindPost, id} }

// CommentsKey is the key of the comment list of one post.
func CommentsKey(postID string) Key { return Key{KindComments, postID} }

// AllCommentsKey covers every comment list.
func AllCommentsKey() Key { return Key{KindComments} }

// String renders the storage key. Parts are query-escaped so that ':' and
// glob characters inside user input cannot widen a prefix match.
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(keyPrefix)
	for i, part := range k {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(url.QueryEscape(part))
	}
	return b.String()
}

// Covers reports whether invalidating k also invalidates other.
func (k Key) Covers(other Key) bool {
	if len(k) > len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}
