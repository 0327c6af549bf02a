// Package store reads and writes kasis, posts and comments. Errors from the
// database are returned unchanged; callers decide how to surface them.
package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kasilami/kasilami/models"
)

// Store is the data-access layer over the shared database handle.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// PostFilter narrows a post listing. Empty fields do not filter.
type PostFilter struct {
	Kasi    string
	Section models.Section
}

func (s *Store) ListKasis(ctx context.Context) ([]models.Kasi, error) {
	var kasis []models.Kasi
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&kasis).Error; err != nil {
		return nil, err
	}
	return kasis, nil
}

// GetKasi looks a kasi up by name, ignoring case and extra whitespace.
func (s *Store) GetKasi(ctx context.Context, name string) (models.Kasi, error) {
	var kasi models.Kasi
	err := s.db.WithContext(ctx).Where("slug = ?", models.KasiSlug(name)).First(&kasi).Error
	return kasi, err
}

func (s *Store) CreateKasi(ctx context.Context, in models.NewKasi) (models.Kasi, error) {
	kasi := models.Kasi{Name: in.Name, Description: in.Description}
	if err := s.db.WithContext(ctx).Create(&kasi).Error; err != nil {
		return models.Kasi{}, err
	}
	return kasi, nil
}

// postsWithCounts selects posts together with their comment count in one
// query.
func (s *Store) postsWithCounts(ctx context.Context) *gorm.DB {
	db := s.db.WithContext(ctx)
	counts := db.Session(&gorm.Session{NewDB: true}).
		Table("comments").
		Select("COUNT(*)").
		Where("comments.post_id = posts.id")
	return db.Model(&models.Post{}).Select("posts.*, (?) AS comment_count", counts)
}

// ListPosts returns posts newest first. An unknown kasi yields no posts.
func (s *Store) ListPosts(ctx context.Context, f PostFilter) ([]models.Post, error) {
	q := s.postsWithCounts(ctx)
	if f.Kasi != "" {
		kasiID := s.db.WithContext(ctx).Session(&gorm.Session{NewDB: true}).
			Model(&models.Kasi{}).
			Select("id").
			Where("slug = ?", models.KasiSlug(f.Kasi))
		q = q.Where("posts.kasi_id = (?)", kasiID)
	}
	if f.Section != "" {
		q = q.Where("posts.section = ?", f.Section)
	}

	posts := []models.Post{}
	if err := q.Order("posts.created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (models.Post, error) {
	var post models.Post
	err := s.postsWithCounts(ctx).Where("posts.id = ?", id).Take(&post).Error
	return post, err
}

// CreatePost attaches the post to the kasi named in the payload. It returns
// gorm.ErrRecordNotFound when no such kasi exists.
func (s *Store) CreatePost(ctx context.Context, in models.NewPost) (models.Post, error) {
	kasi, err := s.GetKasi(ctx, in.Kasi)
	if err != nil {
		return models.Post{}, err
	}
	post := models.Post{
		DisplayName: in.DisplayName,
		KasiID:      kasi.ID,
		Kasi:        kasi.Name,
		Content:     in.Content,
		Section:     in.Section,
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// ListComments returns the comments of one post, oldest first.
func (s *Store) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment returns gorm.ErrRecordNotFound when the post does not exist.
func (s *Store) CreateComment(ctx context.Context, in models.NewComment) (models.Comment, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Select("id").Where("id = ?", in.PostID).Take(&post).Error; err != nil {
		return models.Comment{}, err
	}
	comment := models.Comment{
		PostID:      in.PostID,
		DisplayName: in.DisplayName,
		Content:     in.Content,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

// Ping runs a cheap query against the kasis table.
func (s *Store) Ping(ctx context.Context) error {
	var n int64
	return s.db.WithContext(ctx).Model(&models.Kasi{}).Limit(1).Count(&n).Error
}
