package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like represents a many-to-many relationship between a User and a Post.
// Its existence is the "liked" state: it's created when a user likes a post and
// destroyed when the user unlikes it, or when the post gets deleted.
// A user may like a given post at most once, which the unique index enforces.
type Like struct {
	ID     string `json:"-" gorm:"primaryKey;size:36"`
	PostID string `json:"-" gorm:"notNull;uniqueIndex:idx_likes_post_user"`
	UserID string `json:"user_id" gorm:"notNull;uniqueIndex:idx_likes_post_user;index"`

	CreatedAt time.Time `json:"-"`
}

// BeforeCreate assigns a fresh id to likes that don't have one yet.
func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// LikeService is a set of methods to manipulate and work with the Like model.
type LikeService interface {
	// ByPostAndUser returns the like of userID on postID, or an ENOTFOUND error.
	ByPostAndUser(ctx context.Context, postID, userID string) (*Like, error)
	Create(ctx context.Context, like *Like) error
	Delete(ctx context.Context, like *Like) error
}
