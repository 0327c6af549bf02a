// Package forum is the read/write tier the handlers talk to. Reads go
// through the query cache; writes go to the store and then invalidate the
// cached reads they affect.
package forum

import (
	"context"
	"time"

	"github.com/kasilami/kasilami/cache"
	"github.com/kasilami/kasilami/models"
	"github.com/kasilami/kasilami/store"
	"github.com/kasilami/kasilami/utils"
)

// Repository is the subset of store.Store the service needs.
type Repository interface {
	ListKasis(ctx context.Context) ([]models.Kasi, error)
	GetKasi(ctx context.Context, name string) (models.Kasi, error)
	CreateKasi(ctx context.Context, in models.NewKasi) (models.Kasi, error)
	ListPosts(ctx context.Context, f store.PostFilter) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (models.Post, error)
	CreatePost(ctx context.Context, in models.NewPost) (models.Post, error)
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
	CreateComment(ctx context.Context, in models.NewComment) (models.Comment, error)
	Ping(ctx context.Context) error
}

// TTLs bounds how long each kind of read may be served from cache.
type TTLs struct {
	Kasis    time.Duration
	Posts    time.Duration
	Comments time.Duration
}

// DefaultTTLs match the configuration defaults.
var DefaultTTLs = TTLs{Kasis: 30 * time.Minute, Posts: 5 * time.Minute, Comments: 2 * time.Minute}

type Service struct {
	repo Repository
	qc   *cache.QueryClient
	inv  cache.Invalidator
	ttl  TTLs
}

func NewService(repo Repository, qc *cache.QueryClient, ttl TTLs) *Service {
	return &Service{repo: repo, qc: qc, inv: qc, ttl: ttl}
}

func (s *Service) Kasis(ctx context.Context) ([]models.Kasi, error) {
	return cache.Fetch(ctx, s.qc, cache.KasisKey(), s.ttl.Kasis, s.repo.ListKasis)
}

// Kasi looks a kasi up by name in any letter case.
func (s *Service) Kasi(ctx context.Context, name string) (models.Kasi, error) {
	return cache.Fetch(ctx, s.qc, cache.KasiKey(models.KasiSlug(name)), s.ttl.Kasis, func(ctx context.Context) (models.Kasi, error) {
		return s.repo.GetKasi(ctx, name)
	})
}

func (s *Service) CreateKasi(ctx context.Context, in models.NewKasi) (models.Kasi, error) {
	kasi, err := s.repo.CreateKasi(ctx, in)
	if err != nil {
		return models.Kasi{}, err
	}
	s.invalidate(ctx, cache.KasisKey())
	return kasi, nil
}

// Posts lists posts newest first, optionally narrowed to one kasi and section.
func (s *Service) Posts(ctx context.Context, kasi string, section models.Section) ([]models.Post, error) {
	kasi = models.CleanKasiName(kasi)
	key := cache.PostsKey(models.FormatKasiName(kasi), string(section))
	return cache.Fetch(ctx, s.qc, key, s.ttl.Posts, func(ctx context.Context) ([]models.Post, error) {
		return s.repo.ListPosts(ctx, store.PostFilter{Kasi: kasi, Section: section})
	})
}

func (s *Service) Post(ctx context.Context, id string) (models.Post, error) {
	return cache.Fetch(ctx, s.qc, cache.PostKey(id), s.ttl.Posts, func(ctx context.Context) (models.Post, error) {
		return s.repo.GetPost(ctx, id)
	})
}

func (s *Service) CreatePost(ctx context.Context, in models.NewPost) (models.Post, error) {
	post, err := s.repo.CreatePost(ctx, in)
	if err != nil {
		return models.Post{}, err
	}
	s.invalidate(ctx, cache.AllPostsKey())
	return post, nil
}

func (s *Service) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	return cache.Fetch(ctx, s.qc, cache.CommentsKey(postID), s.ttl.Comments, func(ctx context.Context) ([]models.Comment, error) {
		return s.repo.ListComments(ctx, postID)
	})
}

// CreateComment also drops cached post reads, since they carry comment counts.
func (s *Service) CreateComment(ctx context.Context, in models.NewComment) (models.Comment, error) {
	comment, err := s.repo.CreateComment(ctx, in)
	if err != nil {
		return models.Comment{}, err
	}
	s.invalidate(ctx, cache.CommentsKey(in.PostID))
	s.invalidate(ctx, cache.AllPostsKey())
	s.invalidate(ctx, cache.PostKey(in.PostID))
	return comment, nil
}

// The write already succeeded; a failed invalidation only leaves a read
// stale until its TTL runs out.
func (s *Service) invalidate(ctx context.Context, key cache.Key) {
	if err := s.inv.Invalidate(ctx, key); err != nil {
		utils.Sugar.Warnf("invalidate %s: %v", key.String(), err)
	}
}
