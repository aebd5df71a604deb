package action

import (
	"context"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

const (
	msgFetchProfile    = "Failed to fetch profile"
	msgFetchUserPosts  = "Failed to fetch user posts"
	msgFetchLikedPosts = "Failed to fetch liked posts"
	msgUpdateProfile   = "Failed to update profile"
)

// GetProfileByHandle returns the public profile of the user with the given handle,
// or nil when there is no such user.
func (a *Actions) GetProfileByHandle(ctx context.Context, handle string) (*domain.Profile, error) {
	profile, err := a.store.Users().Profile(ctx, handle)
	if errs.ErrorCode(err) == errs.ENOTFOUND {
		return nil, nil
	}
	if err != nil {
		return nil, a.readFailed("get profile", msgFetchProfile, err, "handle", handle)
	}
	return profile, nil
}

// GetUserPosts returns the posts written by userID, newest first.
func (a *Actions) GetUserPosts(ctx context.Context, userID string) ([]domain.Post, error) {
	posts, err := a.store.Posts().Feed(ctx, domain.PostFilter{AuthorID: userID})
	if err != nil {
		return nil, a.readFailed("get user posts", msgFetchUserPosts, err, "user_id", userID)
	}
	return posts, nil
}

// GetUserLikedPosts returns the posts userID has liked, newest first.
func (a *Actions) GetUserLikedPosts(ctx context.Context, userID string) ([]domain.Post, error) {
	posts, err := a.store.Posts().Feed(ctx, domain.PostFilter{LikedBy: userID})
	if err != nil {
		return nil, a.readFailed("get liked posts", msgFetchLikedPosts, err, "user_id", userID)
	}
	return posts, nil
}

// UpdateProfile overwrites the name, bio, location and website of the user linked
// to the acting identity. It only needs a signed in identity, not a resolved user.
func (a *Actions) UpdateProfile(ctx context.Context, actor domain.Actor, upd domain.ProfileUpdate) (*domain.User, error) {
	if !actor.Authenticated() {
		return nil, unauthenticated(msgUpdateProfile)
	}
	user, err := a.store.Users().UpdateProfile(ctx, actor.ExternalID, &upd)
	if err != nil {
		return nil, a.fail("update profile", msgUpdateProfile, err, "external_id", actor.ExternalID)
	}
	a.invalidator.Invalidate(PathProfile)
	return user, nil
}

// IsFollowing reports whether the acting user follows targetUserID. Anonymous
// actors and failed lookups both yield false.
func (a *Actions) IsFollowing(ctx context.Context, actor domain.Actor, targetUserID string) bool {
	if !actor.Resolved() {
		return false
	}
	ok, err := a.store.Follows().Exists(ctx, actor.UserID, targetUserID)
	if err != nil {
		a.logger.Error("is following: failed", "user_id", actor.UserID, "target_id", targetUserID, "error", err)
		return false
	}
	return ok
}
