package forum

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-playground/assert/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kasilami/kasilami/cache"
	"github.com/kasilami/kasilami/forms"
	"github.com/kasilami/kasilami/models"
	"github.com/kasilami/kasilami/store"
)

type recordingInvalidator struct {
	mu   sync.Mutex
	next cache.Invalidator
	keys []cache.Key
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, key cache.Key) error {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
	if r.next != nil {
		return r.next.Invalidate(ctx, key)
	}
	return nil
}

// countingRepo counts backend reads so tests can tell cache hits from misses.
type countingRepo struct {
	*store.Store
	mu    sync.Mutex
	reads map[string]int
}

func (c *countingRepo) hit(name string) {
	c.mu.Lock()
	c.reads[name]++
	c.mu.Unlock()
}

func (c *countingRepo) ListPosts(ctx context.Context, f store.PostFilter) ([]models.Post, error) {
	c.hit("posts")
	return c.Store.ListPosts(ctx, f)
}

func (c *countingRepo) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	c.hit("comments")
	return c.Store.ListComments(ctx, postID)
}

func newTestService(t *testing.T) (*Service, *countingRepo, *recordingInvalidator) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "forum.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&models.Kasi{}, &models.Post{}, &models.Comment{}); err != nil {
		t.Fatal(err)
	}
	mem := cache.NewMemoryStore()
	t.Cleanup(mem.Close)

	repo := &countingRepo{Store: store.New(db), reads: map[string]int{}}
	qc := cache.NewQueryClient(mem)
	svc := NewService(repo, qc, DefaultTTLs)
	inv := &recordingInvalidator{next: qc}
	svc.inv = inv
	return svc, repo, inv
}

func TestCreateCommentInvalidatesCommentList(t *testing.T) {
	ctx := context.Background()
	svc, repo, inv := newTestService(t)

	_, err := svc.CreateKasi(ctx, models.NewKasi{Name: "Soweto", Description: "Jozi"})
	assert.Equal(t, nil, err)
	post, err := svc.CreatePost(ctx, models.NewPost{DisplayName: "Lerato", Kasi: "soweto", Content: "hi", Section: models.SectionChat})
	assert.Equal(t, nil, err)

	comments, err := svc.Comments(ctx, post.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(comments))
	_, _ = svc.Comments(ctx, post.ID)
	assert.Equal(t, 1, repo.reads["comments"])

	inv.keys = nil
	_, err = svc.CreateComment(ctx, models.NewComment{PostID: post.ID, DisplayName: "Sipho", Content: "sharp"})
	assert.Equal(t, nil, err)
	assert.Equal(t, cache.CommentsKey(post.ID), inv.keys[0])
	assert.Equal(t, cache.AllPostsKey(), inv.keys[1])

	comments, err = svc.Comments(ctx, post.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(comments))
	assert.Equal(t, 2, repo.reads["comments"])
}

func TestPostsCachedPerKasiAndSection(t *testing.T) {
	ctx := context.Background()
	svc, repo, inv := newTestService(t)

	_, err := svc.CreateKasi(ctx, models.NewKasi{Name: "KwaMashu", Description: "Durban"})
	assert.Equal(t, nil, err)
	assert.Equal(t, []cache.Key{cache.KasisKey()}, inv.keys)

	posts, err := svc.Posts(ctx, "kwamashu", models.SectionEvents)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(posts))
	_, _ = svc.Posts(ctx, "KWAMASHU", models.SectionEvents)
	assert.Equal(t, 1, repo.reads["posts"])

	_, err = svc.CreatePost(ctx, models.NewPost{DisplayName: "Thabo", Kasi: "KwaMashu", Content: "Jazz night", Section: models.SectionEvents})
	assert.Equal(t, nil, err)

	posts, err = svc.Posts(ctx, "KwaMashu", models.SectionEvents)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(posts))
	assert.Equal(t, "KwaMashu", posts[0].Kasi)
	assert.Equal(t, 2, repo.reads["posts"])
}

func TestCreatePostUnknownKasiInvalidatesNothing(t *testing.T) {
	svc, _, inv := newTestService(t)
	_, err := svc.CreatePost(context.Background(), models.NewPost{DisplayName: "Thabo", Kasi: "Nowhere", Content: "x", Section: models.SectionNews})
	assert.Equal(t, true, errors.Is(err, gorm.ErrRecordNotFound))
	assert.Equal(t, 0, len(inv.keys))
}

func TestKasiLookupIgnoresCase(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	created, err := svc.CreateKasi(ctx, models.NewKasi{Name: "KwaMashu", Description: "Durban"})
	assert.Equal(t, nil, err)

	got, err := svc.Kasi(ctx, "kwamashu")
	assert.Equal(t, nil, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.Kasi(ctx, "Langa")
	assert.Equal(t, true, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestDiagnose(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	checks := svc.Diagnose(ctx)
	assert.Equal(t, 3, len(checks))
	assert.Equal(t, StatusSuccess, checks[0].Status)
	assert.Equal(t, StatusError, checks[1].Status)
	assert.Equal(t, false, Healthy(checks))

	_, err := svc.CreateKasi(ctx, models.NewKasi{Name: "Langa", Description: "Cape Town"})
	assert.Equal(t, nil, err)
	checks = svc.Diagnose(ctx)
	assert.Equal(t, true, Healthy(checks))
	assert.Equal(t, "found 1 kasis", checks[1].Message)
}

func TestKasiWithApostropheRoundTrips(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	in, err := forms.KasiForm{Name: "Mitchell's Plain", Description: "Cape Flats"}.Validate()
	assert.Equal(t, nil, err)
	created, err := svc.CreateKasi(ctx, in)
	assert.Equal(t, nil, err)
	assert.Equal(t, "Mitchell's Plain", created.Name)

	got, err := svc.Kasi(ctx, "mitchell's plain")
	assert.Equal(t, nil, err)
	assert.Equal(t, created.ID, got.ID)

	post, err := forms.PostForm{DisplayName: "O'Brien", Kasi: "Mitchell's Plain", Content: "a & b", Section: "chat"}.Validate()
	assert.Equal(t, nil, err)
	stored, err := svc.CreatePost(ctx, post)
	assert.Equal(t, nil, err)
	assert.Equal(t, "Mitchell's Plain", stored.Kasi)
	assert.Equal(t, "a & b", stored.Content)
	assert.Equal(t, "O'Brien", stored.DisplayName)
}
