package action

import (
	"context"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

const (
	msgCreatePost  = "Failed to create post"
	msgFetchPosts  = "Failed to fetch posts"
	msgDeletePost  = "Failed to delete post"
	msgUnauthorize = "Unauthorized"
)

// CreatePost publishes a new post of the acting user. An empty imageURL stores a
// post without image.
func (a *Actions) CreatePost(ctx context.Context, actor domain.Actor, content, imageURL string) (*domain.Post, error) {
	if !actor.Resolved() {
		return nil, unauthenticated(msgCreatePost)
	}
	post := &domain.Post{
		AuthorID: actor.UserID,
		Content:  content,
	}
	if imageURL != "" {
		post.Image = &imageURL
	}
	if err := a.store.Posts().Create(ctx, post); err != nil {
		return nil, a.fail("create post", msgCreatePost, err, "user_id", actor.UserID)
	}
	a.invalidator.Invalidate(PathFeed, PathProfile)
	return post, nil
}

// ListFeed returns every post, newest first.
func (a *Actions) ListFeed(ctx context.Context) ([]domain.Post, error) {
	posts, err := a.store.Posts().Feed(ctx, domain.PostFilter{})
	if err != nil {
		return nil, a.readFailed("list feed", msgFetchPosts, err)
	}
	return posts, nil
}

// DeletePost deletes a post of the acting user together with its comments, likes
// and notifications. Nobody but the author may delete a post.
func (a *Actions) DeletePost(ctx context.Context, actor domain.Actor, postID string) error {
	if !actor.Resolved() {
		return unauthenticated(msgDeletePost)
	}
	err := a.store.RunAtomic(ctx, func(tx domain.Store) error {
		post, err := tx.Posts().ByID(ctx, postID)
		if err != nil {
			return err
		}
		if post.AuthorID != actor.UserID {
			return errs.Errorf(errs.EUNAUTHORIZED, msgUnauthorize)
		}
		return tx.Posts().Delete(ctx, postID)
	})
	if err != nil {
		return a.fail("delete post", msgDeletePost, err, "user_id", actor.UserID, "post_id", postID)
	}
	a.invalidator.Invalidate(PathFeed, PathProfile)
	return nil
}
