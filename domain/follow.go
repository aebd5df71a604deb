package domain

import (
	"context"
	"time"
)

// Follow represents a self-referential many-to-many relationship between two users.
// A Follow is created when one user decides to follow another user.
// The FollowerID is the ID of the user that follows, and the FollowingID is the ID of the
// user that is being followed. The pair is the primary key, so an edge exists at most once.
type Follow struct {
	FollowerID  string    `json:"follower_id" gorm:"primaryKey;size:36"`
	FollowingID string    `json:"following_id" gorm:"primaryKey;size:36;index"`
	CreatedAt   time.Time `json:"created_at"`
}

// FollowService is a set of methods to manipulate and work with the Follow model.
type FollowService interface {
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	Create(ctx context.Context, follow *Follow) error
	Delete(ctx context.Context, follow *Follow) error
}
