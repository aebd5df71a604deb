package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationLike    NotificationType = "LIKE"
	NotificationComment NotificationType = "COMMENT"
	NotificationFollow  NotificationType = "FOLLOW"
)

// Notification tells UserID that CreatorID did something involving them.
// Notifications are a side effect of likes, comments and follows. They are never
// created on a direct request, and never when creator and recipient are the same user.
type Notification struct {
	ID        string           `json:"id" gorm:"primaryKey;size:36"`
	Type      NotificationType `json:"type" gorm:"notNull;size:16"`
	UserID    string           `json:"user_id" gorm:"notNull;index"`
	CreatorID string           `json:"creator_id" gorm:"notNull"`
	PostID    *string          `json:"post_id" gorm:"index"`
	CommentID *string          `json:"comment_id"`
	Read      bool             `json:"read" gorm:"notNull;default:false"`

	Creator UserSummary     `json:"creator" gorm:"-"`
	Post    *PostPreview    `json:"post,omitempty" gorm:"-"`
	Comment *CommentPreview `json:"comment,omitempty" gorm:"-"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// BeforeCreate assigns a fresh id to notifications that don't have one yet.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// PostPreview is what a notification shows of the post it refers to.
type PostPreview struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Image   *string `json:"image"`
}

// CommentPreview is what a notification shows of the comment it refers to.
type CommentPreview struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationService is a set of methods to manipulate and work with the Notification model.
type NotificationService interface {
	Create(ctx context.Context, notification *Notification) error
	// ByUserID returns the notifications addressed to userID, newest first.
	ByUserID(ctx context.Context, userID string) ([]Notification, error)
	// MarkRead flags the given notifications of userID as read, or all of them when
	// ids is empty. Ids belonging to other users are ignored.
	MarkRead(ctx context.Context, userID string, ids []string) error
}
