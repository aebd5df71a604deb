package domain

import "context"

// Store gives access to every storage service. It is passed explicitly to whatever
// needs persistence, so tests can hand in a store backed by another database.
type Store interface {
	Users() UserService
	Posts() PostService
	Comments() CommentService
	Likes() LikeService
	Follows() FollowService
	Notifications() NotificationService

	// RunAtomic runs fn against a transactional Store. The transaction commits when
	// fn returns nil and rolls back when it returns an error or panics.
	RunAtomic(ctx context.Context, fn func(tx Store) error) error
}

// Actor is the acting user of a request. ExternalID is the identity provider's
// subject, UserID the internal user it resolved to. Both are empty for anonymous
// requests, and UserID alone is empty when the identity has no user record yet.
type Actor struct {
	ExternalID string
	UserID     string
}

// Resolved reports whether the actor maps to an internal user.
func (a Actor) Resolved() bool {
	return a.UserID != ""
}

// Authenticated reports whether the request carried a valid identity at all.
func (a Actor) Authenticated() bool {
	return a.ExternalID != ""
}
