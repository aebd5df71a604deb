package action

import (
	"context"
	"strings"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

const (
	msgToggleLike    = "Failed to toggle like"
	msgCreateComment = "Failed to create comment"
	msgPostNotFound  = "Post not found"
	msgContentNeeded = "Content is required"
)

// ToggleLike likes the post for the acting user, or takes the like back when there
// already is one. It reports whether the post is liked afterwards.
// Liking a post of someone else notifies its author within the same transaction.
func (a *Actions) ToggleLike(ctx context.Context, actor domain.Actor, postID string) (bool, error) {
	if !actor.Resolved() {
		return false, unauthenticated(msgToggleLike)
	}
	args := []any{"user_id", actor.UserID, "post_id", postID}

	post, err := a.store.Posts().ByID(ctx, postID)
	if err != nil {
		return false, a.fail("toggle like", notFoundOr(err, msgToggleLike), err, args...)
	}

	like, err := a.store.Likes().ByPostAndUser(ctx, postID, actor.UserID)
	switch {
	case err == nil:
		if err := a.store.Likes().Delete(ctx, like); err != nil {
			return false, a.fail("toggle like", msgToggleLike, err, args...)
		}
		a.invalidator.Invalidate(PathFeed, PathProfile)
		return false, nil
	case errs.ErrorCode(err) != errs.ENOTFOUND:
		return false, a.fail("toggle like", msgToggleLike, err, args...)
	}

	err = a.store.RunAtomic(ctx, func(tx domain.Store) error {
		if err := tx.Likes().Create(ctx, &domain.Like{PostID: postID, UserID: actor.UserID}); err != nil {
			return err
		}
		if post.AuthorID == actor.UserID {
			return nil
		}
		return tx.Notifications().Create(ctx, &domain.Notification{
			Type:      domain.NotificationLike,
			UserID:    post.AuthorID,
			CreatorID: actor.UserID,
			PostID:    &post.ID,
		})
	})
	if err != nil {
		return false, a.fail("toggle like", msgToggleLike, err, args...)
	}
	a.invalidator.Invalidate(PathFeed, PathProfile)
	return true, nil
}

// CreateComment adds a comment of the acting user to a post. Commenting on a post
// of someone else notifies its author within the same transaction.
func (a *Actions) CreateComment(ctx context.Context, actor domain.Actor, postID, content string) (*domain.Comment, error) {
	if !actor.Resolved() {
		return nil, unauthenticated(msgCreateComment)
	}
	if strings.TrimSpace(content) == "" {
		return nil, errs.Errorf(errs.EINVALID, msgContentNeeded)
	}
	args := []any{"user_id", actor.UserID, "post_id", postID}

	post, err := a.store.Posts().ByID(ctx, postID)
	if err != nil {
		return nil, a.fail("create comment", notFoundOr(err, msgCreateComment), err, args...)
	}

	comment := &domain.Comment{
		Content:  content,
		AuthorID: actor.UserID,
		PostID:   post.ID,
	}
	err = a.store.RunAtomic(ctx, func(tx domain.Store) error {
		if err := tx.Comments().Create(ctx, comment); err != nil {
			return err
		}
		if post.AuthorID == actor.UserID {
			return nil
		}
		return tx.Notifications().Create(ctx, &domain.Notification{
			Type:      domain.NotificationComment,
			UserID:    post.AuthorID,
			CreatorID: actor.UserID,
			PostID:    &post.ID,
			CommentID: &comment.ID,
		})
	})
	if err != nil {
		return nil, a.fail("create comment", msgCreateComment, err, args...)
	}
	a.invalidator.Invalidate(PathFeed, PathProfile)
	return comment, nil
}

// notFoundOr picks "Post not found" as public message for a missing post, public otherwise.
func notFoundOr(err error, public string) string {
	if errs.ErrorCode(err) == errs.ENOTFOUND {
		return msgPostNotFound
	}
	return public
}
