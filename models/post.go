package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post represents a message published into one section of a kasi forum.
type Post struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	DisplayName string    `gorm:"size:50;not null" json:"display_name"`
	KasiID      string    `gorm:"index:idx_posts_kasi_section;size:36;not null" json:"kasi_id"`
	Kasi        string    `gorm:"size:100;not null" json:"kasi"` // display name copied from the kasi row
	Content     string    `gorm:"type:text;not null" json:"content"`
	Section     Section   `gorm:"index:idx_posts_kasi_section;size:32;not null" json:"section"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	// CommentCount is filled by the list/detail projection and never stored.
	CommentCount int64 `gorm:"->;-:migration" json:"comment_count"`
}

// NewPost is the insert payload for a post.
type NewPost struct {
	DisplayName string
	Kasi        string
	Content     string
	Section     Section
}

// BeforeCreate assigns the id and creation time when the caller left them empty.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	return nil
}

// FeedColumns lists the columns change-feed subscribers may filter on.
// The kasi is reported in its FormatKasiName form, the same form channel
// names and cache keys use.
func (p *Post) FeedColumns() map[string]string {
	return map[string]string{
		"id":      p.ID,
		"kasi":    FormatKasiName(p.Kasi),
		"kasi_id": p.KasiID,
		"section": string(p.Section),
	}
}
