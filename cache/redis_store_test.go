package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/assert/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })
	return mr, rc
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr, rc := newTestRedis(t)
	s := NewRedisStore(rc)

	_, ok := s.Get(ctx, CommentsKey("p1").String())
	assert.Equal(t, false, ok)

	s.Set(ctx, CommentsKey("p1").String(), []byte("[]"), time.Minute)
	s.Set(ctx, CommentsKey("p2").String(), []byte("[1]"), time.Minute)
	s.Set(ctx, KasisKey().String(), []byte("[2]"), time.Minute)

	b, ok := s.Get(ctx, CommentsKey("p1").String())
	assert.Equal(t, true, ok)
	assert.Equal(t, "[]", string(b))
	assert.Equal(t, true, mr.TTL(CommentsKey("p1").String()) > 0)

	assert.Equal(t, nil, s.DeletePrefix(ctx, CommentsKey("p1").String()))
	assert.Equal(t, false, mr.Exists(CommentsKey("p1").String()))
	assert.Equal(t, true, mr.Exists(CommentsKey("p2").String()))

	assert.Equal(t, nil, s.DeletePrefix(ctx, AllCommentsKey().String()))
	assert.Equal(t, false, mr.Exists(CommentsKey("p2").String()))
	assert.Equal(t, true, mr.Exists(KasisKey().String()))
}

func TestRedisStoreDeletePrefixScansEveryKey(t *testing.T) {
	ctx := context.Background()
	mr, rc := newTestRedis(t)
	s := NewRedisStore(rc)

	// more keys than a handful of SCAN pages return
	const n = 12000
	for i := 0; i < n; i++ {
		mr.Set(PostsKey("Soweto", strconv.Itoa(i)).String(), "[]")
	}
	mr.Set(KasisKey().String(), "[]")

	assert.Equal(t, nil, s.DeletePrefix(ctx, AllPostsKey().String()))
	assert.Equal(t, 1, len(mr.Keys()))
	assert.Equal(t, true, mr.Exists(KasisKey().String()))
}
