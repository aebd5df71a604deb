package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a reply written under a post. It belongs to exactly one post and one author.
type Comment struct {
	ID       string      `json:"id" gorm:"primaryKey;size:36"`
	Content  string      `json:"content" gorm:"notNull"`
	AuthorID string      `json:"author_id" gorm:"notNull;index"`
	Author   UserSummary `json:"author" gorm:"-"`
	PostID   string      `json:"post_id" gorm:"notNull;index"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a fresh id to comments that don't have one yet.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CommentService is a set of methods to manipulate and work with the Comment model.
type CommentService interface {
	Create(ctx context.Context, comment *Comment) error
}
