package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment represents a reply to a post.
type Comment struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	PostID      string    `gorm:"index;size:36;not null" json:"post_id"`
	DisplayName string    `gorm:"size:50;not null" json:"display_name"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewComment is the insert payload for a comment.
type NewComment struct {
	PostID      string
	DisplayName string
	Content     string
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	return nil
}

// FeedColumns lists the columns change-feed subscribers may filter on.
func (c *Comment) FeedColumns() map[string]string {
	return map[string]string{
		"id":      c.ID,
		"post_id": c.PostID,
	}
}
