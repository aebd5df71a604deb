package action_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"wtfSocial/action"
	"wtfSocial/domain"
	"wtfSocial/errs"
	"wtfSocial/testutil"
)

// MockInvalidator records the paths it is told to invalidate.
type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(paths ...string) {
	m.Called(paths)
}

type fixture struct {
	db    *gorm.DB
	acts  *action.Actions
	inv   *MockInvalidator
	alice *domain.User
	bob   *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, db := testutil.NewStore(t)
	inv := new(MockInvalidator)
	inv.On("Invalidate", mock.Anything).Return().Maybe()
	return &fixture{
		db:    db,
		acts:  action.New(s, action.WithInvalidator(inv)),
		inv:   inv,
		alice: testutil.CreateUser(t, db, "alice"),
		bob:   testutil.CreateUser(t, db, "bob"),
	}
}

func actorOf(u *domain.User) domain.Actor {
	return domain.Actor{ExternalID: u.ExternalID, UserID: u.ID}
}

func TestScenario_PostLikeCommentDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob := actorOf(f.alice), actorOf(f.bob)

	post, err := f.acts.CreatePost(ctx, alice, "hello world", "")
	require.NoError(t, err)
	assert.Nil(t, post.Image)
	f.inv.AssertCalled(t, "Invalidate", []string{action.PathFeed, action.PathProfile})

	liked, err := f.acts.ToggleLike(ctx, bob, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	comment, err := f.acts.CreateComment(ctx, bob, post.ID, "nice")
	require.NoError(t, err)
	assert.Equal(t, "bob", comment.Author.Handle)

	feed, err := f.acts.ListFeed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, domain.PostCounts{Likes: 1, Comments: 1}, feed[0].Counts)
	assert.Equal(t, f.bob.ID, feed[0].Likes[0].UserID)

	notes, err := f.acts.GetNotifications(ctx, alice)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, domain.NotificationComment, notes[0].Type)
	assert.Equal(t, comment.ID, *notes[0].CommentID)
	assert.Equal(t, domain.NotificationLike, notes[1].Type)
	assert.Equal(t, f.bob.ID, notes[1].CreatorID)

	err = f.acts.DeletePost(ctx, bob, post.ID)
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))
	assert.Equal(t, "Failed to delete post", errs.ErrorMessage(err))
	assert.EqualValues(t, 1, testutil.Count(t, f.db, &domain.Post{}, "id = ?", post.ID))

	require.NoError(t, f.acts.DeletePost(ctx, alice, post.ID))
	assert.Zero(t, testutil.Count(t, f.db, &domain.Post{}, "id = ?", post.ID))
	assert.Zero(t, testutil.Count(t, f.db, &domain.Comment{}, "post_id = ?", post.ID))
	assert.Zero(t, testutil.Count(t, f.db, &domain.Like{}, "post_id = ?", post.ID))
	assert.Zero(t, testutil.Count(t, f.db, &domain.Notification{}, "user_id = ?", f.alice.ID))
	f.inv.AssertCalled(t, "Invalidate", []string{action.PathFeed, action.PathProfile})

	err = f.acts.DeletePost(ctx, alice, post.ID)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
	assert.Equal(t, "Failed to delete post", errs.ErrorMessage(err))
}

func TestToggleLike(t *testing.T) {
	ctx := context.Background()

	t.Run("unlike removes the like without notification", func(t *testing.T) {
		f := newFixture(t)
		post := testutil.CreatePost(t, f.db, f.alice.ID, "hi", time.Now())

		liked, err := f.acts.ToggleLike(ctx, actorOf(f.bob), post.ID)
		require.NoError(t, err)
		require.True(t, liked)
		liked, err = f.acts.ToggleLike(ctx, actorOf(f.bob), post.ID)
		require.NoError(t, err)
		assert.False(t, liked)

		assert.Zero(t, testutil.Count(t, f.db, &domain.Like{}, "post_id = ?", post.ID))
		assert.EqualValues(t, 1, testutil.Count(t, f.db, &domain.Notification{}, "user_id = ?", f.alice.ID),
			"only the like created a notification")
	})

	t.Run("own post is liked without notification", func(t *testing.T) {
		f := newFixture(t)
		post := testutil.CreatePost(t, f.db, f.alice.ID, "hi", time.Now())

		liked, err := f.acts.ToggleLike(ctx, actorOf(f.alice), post.ID)
		require.NoError(t, err)
		assert.True(t, liked)
		assert.Zero(t, testutil.Count(t, f.db, &domain.Notification{}, "1 = 1"))
	})

	t.Run("missing post", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.acts.ToggleLike(ctx, actorOf(f.bob), "missing")
		assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
		assert.Equal(t, "Post not found", errs.ErrorMessage(err))
		f.inv.AssertNotCalled(t, "Invalidate", mock.Anything)
	})

	t.Run("failed notification rolls back the like", func(t *testing.T) {
		f := newFixture(t)
		post := testutil.CreatePost(t, f.db, f.alice.ID, "hi", time.Now())
		testutil.FailCreatesOn(t, f.db, "notifications", errors.New("disk full"))

		liked, err := f.acts.ToggleLike(ctx, actorOf(f.bob), post.ID)
		assert.False(t, liked)
		assert.Equal(t, errs.EINTERNAL, errs.ErrorCode(err))
		assert.Equal(t, "Failed to toggle like", errs.ErrorMessage(err))
		assert.Zero(t, testutil.Count(t, f.db, &domain.Like{}, "post_id = ?", post.ID))
	})

	t.Run("anonymous", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.acts.ToggleLike(ctx, domain.Actor{}, "any")
		assert.Equal(t, errs.EUNAUTHENTICATED, errs.ErrorCode(err))
	})
}

func TestCreateComment(t *testing.T) {
	ctx := context.Background()

	t.Run("blank content", func(t *testing.T) {
		f := newFixture(t)
		post := testutil.CreatePost(t, f.db, f.alice.ID, "hi", time.Now())

		_, err := f.acts.CreateComment(ctx, actorOf(f.bob), post.ID, "   ")
		assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
		assert.Equal(t, "Content is required", errs.ErrorMessage(err))
	})

	t.Run("missing post", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.acts.CreateComment(ctx, actorOf(f.bob), "missing", "hey")
		assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
		assert.Equal(t, "Post not found", errs.ErrorMessage(err))
	})

	t.Run("own post", func(t *testing.T) {
		f := newFixture(t)
		post := testutil.CreatePost(t, f.db, f.alice.ID, "hi", time.Now())

		_, err := f.acts.CreateComment(ctx, actorOf(f.alice), post.ID, "me again")
		require.NoError(t, err)
		assert.Zero(t, testutil.Count(t, f.db, &domain.Notification{}, "1 = 1"))
	})

	t.Run("failed notification rolls back the comment", func(t *testing.T) {
		f := newFixture(t)
		post := testutil.CreatePost(t, f.db, f.alice.ID, "hi", time.Now())
		testutil.FailCreatesOn(t, f.db, "notifications", errors.New("disk full"))

		_, err := f.acts.CreateComment(ctx, actorOf(f.bob), post.ID, "hey")
		assert.Equal(t, "Failed to create comment", errs.ErrorMessage(err))
		assert.Zero(t, testutil.Count(t, f.db, &domain.Comment{}, "post_id = ?", post.ID))
	})
}

func TestListFeed_StorageFailure(t *testing.T) {
	t.Run("posts query fails", func(t *testing.T) {
		f := newFixture(t)
		testutil.CreatePost(t, f.db, f.alice.ID, "hi", time.Now())
		testutil.FailQueriesOn(t, f.db, "posts", errors.New("connection reset"))

		posts, err := f.acts.ListFeed(context.Background())
		assert.Nil(t, posts)
		assert.Equal(t, errs.EINTERNAL, errs.ErrorCode(err))
		assert.Equal(t, "Failed to fetch posts", errs.ErrorMessage(err))
	})

	t.Run("comments preload fails", func(t *testing.T) {
		f := newFixture(t)
		testutil.CreatePost(t, f.db, f.alice.ID, "hi", time.Now())
		require.NoError(t, f.db.Migrator().DropTable(&domain.Comment{}))

		_, err := f.acts.ListFeed(context.Background())
		assert.Equal(t, errs.EINTERNAL, errs.ErrorCode(err))
		assert.Equal(t, "Failed to fetch posts", errs.ErrorMessage(err))
	})
}

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.acts.CreatePost(ctx, actorOf(f.alice), "with picture", "https://img.example.com/1.png")
	require.NoError(t, err)
	require.NotNil(t, post.Image)
	assert.Equal(t, "https://img.example.com/1.png", *post.Image)

	_, err = f.acts.CreatePost(ctx, actorOf(f.alice), "", "")
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	assert.Equal(t, "Failed to create post", errs.ErrorMessage(err))

	_, err = f.acts.CreatePost(ctx, domain.Actor{ExternalID: "ext|ghost"}, "hi", "")
	assert.Equal(t, errs.EUNAUTHENTICATED, errs.ErrorCode(err))
}

func TestLongContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	long := strings.Repeat("a", 1000)

	post, err := f.acts.CreatePost(ctx, actorOf(f.alice), long, "")
	require.NoError(t, err)
	assert.Equal(t, long, post.Content)

	comment, err := f.acts.CreateComment(ctx, actorOf(f.bob), post.ID, long)
	require.NoError(t, err)
	assert.Equal(t, long, comment.Content)
}
