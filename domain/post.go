package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a piece of content published by a user. Image holds the url of an image
// uploaded elsewhere and is nil for text-only posts.
// Author and Counts are not columns: they are filled in by the feed queries,
// as are Comments (oldest first) and Likes.
type Post struct {
	ID       string      `json:"id" gorm:"primaryKey;size:36"`
	Content  string      `json:"content" gorm:"notNull"`
	Image    *string     `json:"image"`
	AuthorID string      `json:"author_id" gorm:"notNull;index"`
	Author   UserSummary `json:"author" gorm:"-"`

	Comments []Comment  `json:"comments" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Likes    []Like     `json:"likes" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Counts   PostCounts `json:"_count" gorm:"-"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh id to posts that don't have one yet.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PostCounts holds the aggregate numbers shown next to a post.
type PostCounts struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}

// PostFilter narrows down a feed query. The zero value selects every post.
type PostFilter struct {
	// AuthorID selects posts written by that user.
	AuthorID string
	// LikedBy selects posts that user has liked.
	LikedBy string
}

// PostService is a set of methods to manipulate and work with the Post model.
type PostService interface {
	Create(ctx context.Context, post *Post) error
	ByID(ctx context.Context, id string) (*Post, error)
	// Feed returns the posts matching filter, newest first, each enriched with its
	// author, comments, likes and counts.
	Feed(ctx context.Context, filter PostFilter) ([]Post, error)
	// Delete removes a post together with its comments, likes and notifications.
	Delete(ctx context.Context, id string) error
}
